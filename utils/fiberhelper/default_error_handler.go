package fiberhelpers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"chartdesk/apperror"
	"chartdesk/utils/log"
)

// DefaultErrorHandler : handler 가 반환한 에러를 {code, message} JSON 으로 변환
//   - *apperror.Error : kind 별 HTTP status
//   - *fiber.Error    : fiber 가 정한 status (404 route 등)
//   - 그 외           : 500
func DefaultErrorHandler(ctx *fiber.Ctx, err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		status := apperror.Status(appErr.Kind)
		if status >= fiber.StatusInternalServerError {
			log.Errorf("[HTTP] %s %s: %v", ctx.Method(), ctx.Path(), err)
		} else {
			log.Warnf("[HTTP] %s %s: %v", ctx.Method(), ctx.Path(), err)
		}
		return ctx.Status(status).JSON(apperror.NewErrorResponse(err))
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		log.Warnf("[HTTP] %s %s: %v", ctx.Method(), ctx.Path(), fiberErr)
		return ctx.Status(fiberErr.Code).JSON(apperror.ErrorResponse{
			Code:    strconv.Itoa(fiberErr.Code),
			Message: fiberErr.Message,
		})
	}

	log.Errorf("[HTTP] %s %s: %v", ctx.Method(), ctx.Path(), err)
	return ctx.Status(fiber.StatusInternalServerError).JSON(apperror.NewInternalServerError())
}
