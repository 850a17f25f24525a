// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package reports provides the issue report service, a collection service
// that keeps every report under core.KeyIssueReports.
package reports

import (
	"context"
	"time"

	"github.com/poiesic/blobstore/collection"
	"github.com/poiesic/blobstore/core"
	"github.com/poiesic/blobstore/storage"
)

// IssueReport is a user-submitted problem report.
type IssueReport struct {
	ID          int       `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero" yaml:"updatedAt,omitempty"`
}

var identity = collection.Identity[IssueReport, int]{
	ID:    func(r IssueReport) int { return r.ID },
	SetID: func(r *IssueReport, id int) { r.ID = id },
	Next:  collection.NextIntID[int],
}

// Service manages issue reports.
type Service struct {
	repo *collection.Repository[IssueReport, int]
	now  func() time.Time
}

// NewService creates a Service storing reports in store.
func NewService(store *storage.Store, opts ...collection.Option) *Service {
	return &Service{
		repo: collection.New(store, core.KeyIssueReports, identity, opts...),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// List returns every report in submission order.
func (s *Service) List(ctx context.Context) ([]IssueReport, error) {
	return s.repo.List(ctx)
}

// Get returns the report with the given id.
func (s *Service) Get(ctx context.Context, id int) (IssueReport, bool, error) {
	if id <= 0 {
		return IssueReport{}, false, nil
	}
	return s.repo.Get(ctx, id)
}

// Add validates and stores a new report, assigning the next free id.
func (s *Service) Add(ctx context.Context, title, description string) (IssueReport, error) {
	if err := validate(title, description); err != nil {
		return IssueReport{}, err
	}
	return s.repo.Add(ctx, IssueReport{
		Title:       title,
		Description: description,
		CreatedAt:   s.now(),
	})
}

// Update replaces the title and description of an existing report.
// Returns core.ErrNotFound if no report has the id.
func (s *Service) Update(ctx context.Context, id int, title, description string) (IssueReport, error) {
	if err := core.RequirePositive("id", id); err != nil {
		return IssueReport{}, err
	}
	if err := validate(title, description); err != nil {
		return IssueReport{}, err
	}
	return s.repo.Update(ctx, id, func(r *IssueReport) error {
		r.Title = title
		r.Description = description
		r.UpdatedAt = s.now()
		return nil
	})
}

// Delete removes the report with the given id and reports whether it existed.
func (s *Service) Delete(ctx context.Context, id int) (bool, error) {
	if err := core.RequirePositive("id", id); err != nil {
		return false, err
	}
	return s.repo.Delete(ctx, id)
}

func validate(title, description string) error {
	if err := core.RequireNonBlank("title", title); err != nil {
		return err
	}
	return core.RequireNonBlank("description", description)
}
