package response

import (
	"github.com/gofiber/fiber/v2"

	"chartdesk/apperror"
)

type Ext struct {
	*fiber.Ctx
}

// Ok : 성공(200) 응답
func (ext Ext) Ok(data interface{}) error {
	return ext.Status(fiber.StatusOK).JSON(data)
}

// Created : 생성(201) 응답
func (ext Ext) Created(data interface{}) error {
	return ext.Status(fiber.StatusCreated).JSON(data)
}

// NoContent : 본문 없는 204 응답
func (ext Ext) NoContent() error {
	return ext.SendStatus(fiber.StatusNoContent)
}

// Error : apperror kind 에 맞는 status 로 에러 응답
func (ext Ext) Error(err error) error {
	return ext.Status(apperror.Status(apperror.KindOf(err))).JSON(apperror.NewErrorResponse(err))
}

// HTML : 렌더링된 페이지 응답
func (ext Ext) HTML(body []byte) error {
	ext.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return ext.Status(fiber.StatusOK).Send(body)
}
