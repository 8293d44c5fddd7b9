package storage

import (
	"context"
	"fmt"

	"github.com/desertthunder/localdb/internal/models"
	"github.com/desertthunder/localdb/internal/repositories"
	"github.com/desertthunder/localdb/internal/shared"
)

// RepositoryFactory builds the repository a [Set] reads and writes through.
type RepositoryFactory[T models.Model] func(q repositories.Querier, d shared.Dialect) models.Repository[T]

// Set is a typed collection of one entity kind inside a [Context].
//
// Staged entities are held by reference: changes made to one after staging are what gets saved.
type Set[T models.Model] struct {
	name  string
	owner *Context
	repo  RepositoryFactory[T]
}

func newSet[T models.Model](owner *Context, name string, repo RepositoryFactory[T]) *Set[T] {
	return &Set[T]{name: name, owner: owner, repo: repo}
}

// Name returns the collection name.
func (s *Set[T]) Name() string { return s.name }

// Find returns the committed entity with the given id, or an error wrapping [shared.ErrNotFound].
func (s *Set[T]) Find(ctx context.Context, id int64) (T, error) {
	return s.committed().Get(ctx, id)
}

// List returns committed entities matching criteria, ordered by id.
func (s *Set[T]) List(ctx context.Context, criteria map[string]any) ([]T, error) {
	return s.committed().List(ctx, criteria)
}

// Add stages the entity for insertion. An id of 0 is assigned by the store on save.
func (s *Set[T]) Add(entity T) error {
	if err := entity.Validate(); err != nil {
		return err
	}

	var reset func()
	if entity.ID() == 0 {
		reset = func() { entity.SetID(0) }
	}

	s.owner.stage(change{
		Change: Change{Set: s.name, Op: OpAdd, ID: entity.ID()},
		apply: func(ctx context.Context, q repositories.Querier) error {
			return s.repo(q, s.owner.dialect).Create(ctx, entity)
		},
		reset: reset,
	})
	return nil
}

// Update stages a full overwrite of the stored entity with the same id.
func (s *Set[T]) Update(entity T) error {
	if err := entity.Validate(); err != nil {
		return err
	}
	if entity.ID() == 0 {
		return fmt.Errorf("%w: cannot update %s without an id", models.ErrValidation, s.name)
	}

	id := entity.ID()
	s.owner.stage(change{
		Change: Change{Set: s.name, Op: OpUpdate, ID: id},
		apply: func(ctx context.Context, q repositories.Querier) error {
			return s.repo(q, s.owner.dialect).Update(ctx, entity)
		},
	})
	return nil
}

// Remove stages deletion of the entity with the given id.
func (s *Set[T]) Remove(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid %s id %d", models.ErrValidation, s.name, id)
	}

	s.owner.stage(change{
		Change: Change{Set: s.name, Op: OpRemove, ID: id},
		apply: func(ctx context.Context, q repositories.Querier) error {
			return s.repo(q, s.owner.dialect).Delete(ctx, id)
		},
	})
	return nil
}

// Pending returns the number of staged changes for this set.
func (s *Set[T]) Pending() int {
	n := 0
	for _, ch := range s.owner.pending {
		if ch.Set == s.name {
			n++
		}
	}
	return n
}

func (s *Set[T]) committed() models.Repository[T] {
	return s.repo(s.owner.db, s.owner.dialect)
}
