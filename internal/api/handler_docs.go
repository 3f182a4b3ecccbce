package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"

	"device-inventory-backend/internal/model"
)

const openAPIPath = "/docs/openapi.json"

// DocsInfo godoc
// @Summary      API documentation usage notes
// @Tags         Docs
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /docs-info [get]
func (h *Handler) DocsInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "See /docs for Swagger UI and " + openAPIPath + " for the OpenAPI document. All routes are RESTful; no WebSockets are used.",
	})
}

// Docs serves everything under /docs: the raw document at
// /docs/openapi.json and Swagger UI for the rest.
func Docs() gin.HandlerFunc {
	ui := ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(openAPIPath))

	return func(c *gin.Context) {
		switch c.Param("any") {
		case "/openapi.json":
			doc, err := swag.ReadDoc()
			if err != nil {
				abortError(c, http.StatusInternalServerError, model.CodeServerError, "Internal server error", "")
				return
			}
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
		case "", "/":
			c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
		default:
			ui(c)
		}
	}
}
