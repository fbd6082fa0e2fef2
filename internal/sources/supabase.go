package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"

	supabase "github.com/nedpals/supabase-go"

	"job-board-go/internal/models"
)

// SupabaseSource reads the job collection from a Supabase table using
// the nedpals/supabase-go SDK.
type SupabaseSource struct {
	client  *supabase.Client
	table   string
	skipped atomic.Int64
}

// NewSupabaseSource creates a SupabaseSource. It reads SUPABASE_URL and SUPABASE_KEY
// from environment variables if empty values are provided.
func NewSupabaseSource(supabaseURL, supabaseKey, table string) (*SupabaseSource, error) {
	if supabaseURL == "" {
		supabaseURL = os.Getenv("SUPABASE_URL")
	}
	if supabaseKey == "" {
		supabaseKey = os.Getenv("SUPABASE_KEY")
	}
	if supabaseURL == "" || supabaseKey == "" {
		return nil, fmt.Errorf("supabase URL and key must be provided via args or SUPABASE_URL / SUPABASE_KEY env vars")
	}
	if table == "" {
		table = "jobs"
	}

	// CreateClient returns *supabase.Client (no error)
	client := supabase.CreateClient(supabaseURL, supabaseKey)
	return &SupabaseSource{client: client, table: table}, nil
}

func (s *SupabaseSource) Name() string {
	return "Supabase"
}

// FetchJobs selects every row of the table. The SDK call does not take a
// context, so cancellation is only checked before the request.
func (s *SupabaseSource) FetchJobs(ctx context.Context) ([]models.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []json.RawMessage
	if err := s.client.DB.From(s.table).Select("*").Execute(&rows); err != nil {
		return nil, fmt.Errorf("failed to select from %s: %w", s.table, err)
	}

	jobs, skipped := decodeJobs(rows)
	s.skipped.Store(int64(skipped))
	return jobs, nil
}

// Skipped returns the number of rows dropped by the last fetch.
func (s *SupabaseSource) Skipped() int {
	return int(s.skipped.Load())
}
