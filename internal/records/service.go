package records

import "context"

// Service is the entry point upstream callers use to add records. It keeps no
// state of its own and returns the repository's errors as they are.
type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Add hands the record to the repository unchanged.
func (s *Service) Add(ctx context.Context, rec Record) error {
	return s.Repo.Add(ctx, rec)
}

// AddWithComponent hands the record to the repository as separate fields.
// It must behave exactly like Add for the same record.
func (s *Service) AddWithComponent(ctx context.Context, rec Record) error {
	return s.Repo.AddWith(ctx, rec.Name, rec.Age)
}

func (s *Service) All(ctx context.Context) ([]Record, error) {
	return s.Repo.All(ctx)
}

func (s *Service) AllWithName(ctx context.Context, name string) ([]Record, error) {
	return s.Repo.AllWithName(ctx, name)
}

// Rejection describes one record AddAll could not admit.
type Rejection struct {
	Index  int
	Record Record
	Err    error
}

// BatchResult summarizes an AddAll call.
type BatchResult struct {
	Admitted int
	Rejected []Rejection
}

// AddAll admits records one at a time, in order, through Add. A rejection
// does not stop the batch and admitted records are not rolled back. Only a
// cancelled context ends the batch early; its error is returned.
func (s *Service) AddAll(ctx context.Context, recs []Record) (BatchResult, error) {
	var res BatchResult
	for i, rec := range recs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := s.Add(ctx, rec); err != nil {
			res.Rejected = append(res.Rejected, Rejection{Index: i, Record: rec, Err: err})
			continue
		}
		res.Admitted++
	}
	return res, nil
}
