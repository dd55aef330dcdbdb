package repositories

import (
	"errors"
	"fmt"

	"newspaper/models"

	"gorm.io/gorm"
)

// translate maps gorm's not-found error onto models.ErrNotFound so services never import gorm.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return err
}
