package bolt

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/powertimer/domain"
	"github.com/fastygo/powertimer/internal/infrastructure/boltdb"
	"github.com/fastygo/powertimer/repository"
)

type templateRepository struct {
	db  *bbolt.DB
	now func() time.Time
}

// NewTemplateRepository returns a BoltDB-backed implementation of TemplateRepository.
func NewTemplateRepository(db *bbolt.DB) repository.TemplateRepository {
	return &templateRepository{db: db, now: time.Now}
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	var tpl domain.Template
	err := r.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(boltdb.BucketTemplates).Get([]byte(id))
		if raw == nil {
			return domain.ErrTemplateNotFound
		}
		return json.Unmarshal(raw, &tpl)
	})
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *templateRepository) List(ctx context.Context) ([]domain.Template, error) {
	templates := make([]domain.Template, 0)
	err := r.db.View(func(tx *bbolt.Tx) error {
		var err error
		templates, err = loadTemplates(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(templates, func(i, j int) bool {
		if templates[i].CreatedAt.Equal(templates[j].CreatedAt) {
			return templates[i].Name < templates[j].Name
		}
		return templates[i].CreatedAt.Before(templates[j].CreatedAt)
	})
	return templates, nil
}

func (r *templateRepository) Create(ctx context.Context, template *domain.Template) (*domain.Template, error) {
	if template == nil {
		return nil, domain.ErrInvalidPayload
	}
	r.prepare(template)
	err := r.db.Update(func(tx *bbolt.Tx) error {
		return putJSON(tx.Bucket(boltdb.BucketTemplates), template.ID, template)
	})
	if err != nil {
		return nil, err
	}
	return template, nil
}

func (r *templateRepository) CreateIfAbsent(ctx context.Context, template *domain.Template) (bool, error) {
	if template == nil {
		return false, domain.ErrInvalidPayload
	}
	var created bool
	err := r.db.Update(func(tx *bbolt.Tx) error {
		existing, err := loadTemplates(tx)
		if err != nil {
			return err
		}
		for _, tpl := range existing {
			if tpl.Name == template.Name {
				return nil
			}
		}
		r.prepare(template)
		created = true
		return putJSON(tx.Bucket(boltdb.BucketTemplates), template.ID, template)
	})
	return created, err
}

func (r *templateRepository) prepare(template *domain.Template) {
	if template.ID == "" {
		template.ID = uuid.NewString()
	}
	if template.CreatedAt.IsZero() {
		template.CreatedAt = r.now()
	}
}

func loadTemplates(tx *bbolt.Tx) ([]domain.Template, error) {
	templates := make([]domain.Template, 0)
	err := tx.Bucket(boltdb.BucketTemplates).ForEach(func(_, v []byte) error {
		var tpl domain.Template
		if err := json.Unmarshal(v, &tpl); err != nil {
			return err
		}
		templates = append(templates, tpl)
		return nil
	})
	return templates, err
}
