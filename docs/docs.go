// Package docs provides the generated swagger spec registration.
// Regenerate with `swag init` after changing controller annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/lobby/create": {
            "post": {
                "tags": ["lobby"],
                "summary": "Create a lobby",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/lobby/list": {
            "get": {
                "tags": ["lobby"],
                "summary": "List open lobbies",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/lobby/{id}/join": {
            "post": {
                "tags": ["lobby"],
                "summary": "Join a lobby",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/new_game": {
            "post": {
                "tags": ["game"],
                "summary": "Start a solo game",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/game/{id}/draw": {
            "post": {
                "tags": ["game"],
                "summary": "Draw a card",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/game/{id}/discard": {
            "post": {
                "tags": ["game"],
                "summary": "Discard a card",
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Njuka API",
	Description:      "Gin server for the Njuka card game: lobbies, games and wallet.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
