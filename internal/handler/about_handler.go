package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type AboutHandler struct {
	pages *Pages
}

func NewAboutHandler(pages *Pages) *AboutHandler {
	return &AboutHandler{pages: pages}
}

func (h *AboutHandler) Author(c *gin.Context) {
	h.pages.HTML(c, http.StatusOK, "Об авторе", "about_author", nil)
}

func (h *AboutHandler) Tech(c *gin.Context) {
	h.pages.HTML(c, http.StatusOK, "Технологии", "about_tech", nil)
}
