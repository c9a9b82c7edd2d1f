// Package swagger registers the OpenAPI document served under /swagger.
// Regenerate the paths from the handler annotations with:
//
//	swag init -g cmd/api/main.go -o api/swagger
package swagger

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
        "/login": {"post": {"tags": ["auth"], "summary": "Login user", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "429": {"description": "Too Many Requests"}}}},
        "/logout": {"post": {"tags": ["auth"], "summary": "Logout user", "responses": {"200": {"description": "OK"}}}},
        "/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Current user", "responses": {"200": {"description": "OK"}}}},
        "/me/password": {"put": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Change own password", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/api/dashboard": {"get": {"security": [{"BearerAuth": []}], "tags": ["dashboard"], "summary": "Dashboard totals", "responses": {"200": {"description": "OK"}}}},
        "/api/clients": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["clients"], "summary": "List clients", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["clients"], "summary": "Create client", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}}
        },
        "/api/clients/import": {"post": {"security": [{"BearerAuth": []}], "tags": ["clients"], "summary": "Import clients from spreadsheet rows", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "500": {"description": "Internal Server Error"}}}},
        "/api/clients/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["clients"], "summary": "Get client", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["clients"], "summary": "Update client", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["clients"], "summary": "Delete client", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/clients/{id}/partners": {"post": {"security": [{"BearerAuth": []}], "tags": ["clients"], "summary": "Add partner", "responses": {"201": {"description": "Created"}}}},
        "/api/clients/{id}/partners/{partnerId}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["clients"], "summary": "Remove partner", "responses": {"200": {"description": "OK"}}}},
        "/api/groups": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "List economic groups", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "Create economic group", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/api/groups/{id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "Update economic group", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "Delete economic group", "responses": {"200": {"description": "OK"}}}
        },
        "/api/users": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "List users", "responses": {"200": {"description": "OK"}, "302": {"description": "Found"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Create a new user", "responses": {"201": {"description": "Created"}, "403": {"description": "Forbidden"}}}
        },
        "/api/users/{id}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Delete a user", "responses": {"200": {"description": "OK"}}}},
        "/api/audit-logs": {"get": {"security": [{"BearerAuth": []}], "tags": ["audit"], "summary": "Get audit logs", "responses": {"200": {"description": "OK"}, "302": {"description": "Found"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Back-office API",
	Description:      "Clients, economic groups, users and spreadsheet import for the firm back-office.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
