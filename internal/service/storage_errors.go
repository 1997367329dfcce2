package service

import (
	"errors"
	"fmt"

	"github.com/shopizen/internal/kvstore"
)

func isCorrupt(err error) bool {
	return errors.Is(err, kvstore.ErrCorruptValue)
}

func wrapStorageErr(err error) error {
	if err == nil || errors.Is(err, ErrStorageWrite) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStorageWrite, err)
}
