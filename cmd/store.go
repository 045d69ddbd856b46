package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/popcorn/internal/formatter"
	"github.com/desertthunder/popcorn/internal/repositories"
	"github.com/desertthunder/popcorn/internal/shared"
	"github.com/desertthunder/popcorn/internal/state"
	"github.com/urfave/cli/v3"
)

// StoreKeys lists the keys held by the local store.
func (r *Runner) StoreKeys(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore(cmd)
	if err != nil {
		return err
	}

	switch s := store.(type) {
	case *repositories.LocalStorageRepository:
		values, err := s.List(ctx)
		if err != nil {
			return err
		}
		if r.tables {
			rows := make([][]string, 0, len(values))
			for _, v := range values {
				rows = append(rows, []string{v.Key, strconv.Itoa(v.Revision), strconv.Itoa(len(v.Value)), v.UpdatedAt.Format(time.DateTime)})
			}
			return r.writePlain("%s\n", formatter.Table([]string{"Key", "Revision", "Bytes", "Updated"}, rows))
		}
		for _, v := range values {
			r.writePlain("%s\t%d\t%d\n", v.Key, v.Revision, len(v.Value))
		}
	case *state.MemoryStore:
		for _, k := range s.Keys() {
			r.writePlain("%s\n", k)
		}
	default:
		return fmt.Errorf("%w: store does not list keys", shared.ErrNotImplemented)
	}
	return nil
}

// StoreDelete removes a key from the local store.
func (r *Runner) StoreDelete(ctx context.Context, cmd *cli.Command) error {
	key := cmd.StringArg("key")
	if key == "" {
		return fmt.Errorf("%w: key", shared.ErrMissingArgument)
	}

	store, err := r.openStore(cmd)
	if err != nil {
		return err
	}

	repo, ok := store.(*repositories.LocalStorageRepository)
	if !ok {
		return fmt.Errorf("%w: store does not delete keys", shared.ErrNotImplemented)
	}
	if err := repo.Delete(ctx, key); err != nil {
		return err
	}

	r.logger.Info("deleted key", "key", key)
	return r.writePlain("✓ Deleted %s\n", key)
}
