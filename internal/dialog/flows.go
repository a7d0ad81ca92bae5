// Package dialog implements the add, edit and delete interactions.
//
// The flows only write to the store. The list picks the result up from
// the store's change notifications, so nothing here touches displayed
// rows.
package dialog

import (
	"context"
	"fmt"

	"github.com/idilsaglam/names/internal/model"
	"github.com/idilsaglam/names/internal/store"
)

// Writer runs a write transaction. *store.Store satisfies it.
type Writer interface {
	Write(ctx context.Context, fn func(*store.Tx) error) error
}

// Add inserts a record. It reports false without writing when either
// field is empty.
func Add(ctx context.Context, w Writer, text, subtext string) (bool, error) {
	if model.Validate(text, subtext) != nil {
		return false, nil
	}
	err := w.Write(ctx, func(tx *store.Tx) error {
		_, err := tx.Add(text, subtext)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("add: %w", err)
	}
	return true, nil
}

// Edit overwrites both fields of the record with id. It reports false
// without writing when either field is empty.
func Edit(ctx context.Context, w Writer, id, text, subtext string) (bool, error) {
	if model.Validate(text, subtext) != nil {
		return false, nil
	}
	err := w.Write(ctx, func(tx *store.Tx) error {
		return tx.Update(id, text, subtext)
	})
	if err != nil {
		return false, fmt.Errorf("edit: %w", err)
	}
	return true, nil
}

// Delete removes the record with id.
func Delete(ctx context.Context, w Writer, id string) error {
	err := w.Write(ctx, func(tx *store.Tx) error {
		return tx.Delete(id)
	})
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}
