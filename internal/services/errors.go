package services

import (
	stderrors "errors"
	"fmt"

	"github.com/abrezinsky/armyroster/internal/errors"
	"github.com/abrezinsky/armyroster/internal/repository"
)

// Service errors
var (
	ErrClipboardEmpty = errors.InvalidInputf("clipboard is empty")
	ErrEmptyImport    = errors.InvalidInputf("import is empty")
)

// storageError maps a repository failure on a draft to an application error
func storageError(err error, draftID int64) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.Wrap(err, errors.ErrNotFound, fmt.Sprintf("draft %d not found", draftID))
	}
	return errors.Internal(err)
}
