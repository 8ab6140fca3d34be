// Package swagger holds the generated API description of the gateway.
package swagger

import (
	"github.com/swaggo/swag"
)

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/login": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login view",
                "responses": {"200": {"description": "OK"}, "302": {"description": "Already signed in"}}
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign in",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Wrong email or password"}, "429": {"description": "Too many attempts"}}
            }
        },
        "/dashboard/{view}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Resident dashboard view",
                "parameters": [{"type": "string", "name": "view", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "302": {"description": "Unknown view"}}
            }
        },
        "/admin/dashboard/{view}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Manager dashboard view",
                "parameters": [{"type": "string", "name": "view", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "302": {"description": "Unknown view"}}
            }
        },
        "/app/selection": {
            "get": {
                "produces": ["application/json"],
                "tags": ["selection"],
                "summary": "Current scope",
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["selection"],
                "summary": "Clear scope",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/app/sections/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sections"],
                "summary": "Load a dashboard section",
                "parameters": [
                    {"type": "string", "name": "name", "in": "path", "required": true},
                    {"type": "string", "name": "flavor", "in": "query", "required": true},
                    {"type": "string", "name": "period", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Superseded"}}
            }
        },
        "/app/documents": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Upload a document",
                "responses": {"201": {"description": "Created"}, "502": {"description": "Upload or registration failed"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "SmartEntrance Gateway API",
	Description:      "Web gateway between the SmartEntrance dashboards and the REST backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
