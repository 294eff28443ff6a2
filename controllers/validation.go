package controllers

import (
	"errors"
	"strconv"
	"strings"
	"sync"

	apperrors "attire-service/common/errors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by request models.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
}

func parsePaginationParams(c *gin.Context) (int, int) {
	page, limit := DefaultPage, DefaultLimit
	if p, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit))); err == nil && l > 0 {
		limit = l
		if limit > MaxLimit {
			limit = MaxLimit
		}
	}
	return page, limit
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		apperrors.Respond(c, apperrors.BadRequest(errors.New("invalid "+name)))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds the body or writes a 400 with the binding error.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		apperrors.Respond(c, apperrors.New(400, "Invalid request: "+err.Error(), err))
		return false
	}
	return true
}
