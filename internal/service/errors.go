package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	pkgerrors "go-inventory-po/pkg/errors"
	"go-inventory-po/pkg/validator"

	"gorm.io/gorm"
)

func validationError(errs []*validator.ErrorResponse) error {
	return pkgerrors.New(pkgerrors.CodeValidation, validator.Summary(errs)).WithDetails(errs)
}

// lookupError maps a failed lookup to not-found or an internal error.
func lookupError(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "%s not found", entity)
	}
	return storeError(err, "failed to load "+entity)
}

// storeError keeps typed errors as they are and wraps everything else.
func storeError(err error, message string) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a record with the same unique value already exists")
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "the record is referenced by other records")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, message)
}

// nextCode returns prefix followed by the 4-digit successor of latest's sequence.
func nextCode(prefix, latest string) string {
	seq := 0
	if latest != "" {
		if n, err := strconv.Atoi(strings.TrimPrefix(latest, prefix)); err == nil {
			seq = n
		}
	}
	return fmt.Sprintf("%s%04d", prefix, seq+1)
}
