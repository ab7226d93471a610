package services

import (
	"go.uber.org/zap"

	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/diewo77/go-backoffice/internal/store"
)

type ClientService struct {
	repo *store.Store
	log  *zap.SugaredLogger
}

func NewClientService(repo *store.Store, log *zap.SugaredLogger) *ClientService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ClientService{repo: repo, log: log}
}

// List skips entries that no longer decode so one bad record cannot break
// the pickers.
func (s *ClientService) List() []models.Client {
	recs := s.repo.ListAll()
	out := make([]models.Client, 0, len(recs))
	for _, rec := range recs {
		var c models.Client
		if err := models.FromRecord(rec, &c); err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (s *ClientService) Get(id string) (models.Client, bool) {
	rec, ok := s.repo.Get(id)
	if !ok {
		return models.Client{}, false
	}
	var c models.Client
	if err := models.FromRecord(rec, &c); err != nil {
		return models.Client{}, false
	}
	return c, true
}

func (s *ClientService) Add(c *models.Client) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = models.GenID()
	}
	rec, err := models.ToRecord(c)
	if err != nil {
		return err
	}
	_, err = s.repo.Add(rec)
	return err
}

func (s *ClientService) Update(c *models.Client) error {
	if err := c.Validate(); err != nil {
		return err
	}
	rec, err := models.ToRecord(c)
	if err != nil {
		return err
	}
	_, err = s.repo.Upsert(rec)
	return err
}

func (s *ClientService) Delete(id string) bool {
	return s.repo.Delete(id)
}
