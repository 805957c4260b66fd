package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
		c.String(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>lekton — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the public API surface.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "lekton", "version": "v0.1.0" },
  "paths": {
    "/api/v1/ingest": {
      "post": {
        "summary": "Ingest a documentation page",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"service_token":{"type":"string"},"slug":{"type":"string"},"title":{"type":"string"},"content":{"type":"string"},"access_level":{"type":"string"},"service_owner":{"type":"string"},"tags":{"type":"array","items":{"type":"string"}}}}}}},
        "responses": { "200": { "description": "document ingested" }, "401": { "description": "invalid service token" }, "400": { "description": "validation failure" } }
      }
    },
    "/api/v1/schemas": {
      "post": { "summary": "Ingest a schema version", "responses": { "200": { "description": "schema ingested" } } },
      "get": { "summary": "List schemas with their latest stable version", "responses": { "200": { "description": "schema catalog" } } }
    },
    "/api/v1/schemas/{name}": {
      "get": { "summary": "Get one schema with full version history", "responses": { "200": { "description": "schema" }, "404": { "description": "unknown schema" } } }
    },
    "/api/v1/schemas/{name}/{version}": {
      "get": { "summary": "Get the raw spec file of one version", "responses": { "200": { "description": "spec content" }, "404": { "description": "unknown version" } } }
    },
    "/api/v1/search": {
      "get": { "summary": "Full-text search filtered by access level", "parameters": [{"name":"q","in":"query","required":true,"schema":{"type":"string"}},{"name":"access_level","in":"query","schema":{"type":"string"}}], "responses": { "200": { "description": "search hits" } } }
    },
    "/api/v1/search/token": {
      "get": { "summary": "Issue a level-scoped search token", "responses": { "200": { "description": "signed token" } } }
    },
    "/api/v1/docs": {
      "get": { "summary": "Navigation listing of accessible documents", "responses": { "200": { "description": "documents" } } }
    },
    "/api/v1/docs/{slug}": {
      "get": { "summary": "Get one document with its markdown content", "responses": { "200": { "description": "document" }, "403": { "description": "insufficient level" }, "404": { "description": "unknown document" } } }
    },
    "/api/v1/upload-image": {
      "post": { "summary": "Upload an image referenced by documentation", "responses": { "200": { "description": "stored key" } } }
    }
  }
}`
