// Package repository holds the gorm implementations of the service stores.
package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vnkhanh/surveyhub/services"
)

// translate maps a missing row to notFound and wraps every other driver
// error as services.ErrPersistenceUnavailable.
func translate(err error, notFound error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return fmt.Errorf("%w: %s: %v", services.ErrPersistenceUnavailable, op, err)
}

// byOrder sorts children the way every read of the survey graph expects.
func byOrder(db *gorm.DB) *gorm.DB {
	return db.Order("order_index ASC, id ASC")
}

// affected turns a write that touched no row into notFound.
func affected(res *gorm.DB, notFound error, op string) error {
	if res.Error != nil {
		return translate(res.Error, notFound, op)
	}
	if res.RowsAffected == 0 {
		return notFound
	}
	return nil
}
