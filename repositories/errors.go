package repositories

import (
	"errors"

	"github.com/yeremiapane/global-bites/utils"
	"gorm.io/gorm"
)

// translateError turns storage errors into AppErrors. what names the entity, e.g. "dish".
func translateError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NewNotFound("%s not found", what)
	}
	return utils.WrapUpstream(err, "failed to access %s", what)
}
