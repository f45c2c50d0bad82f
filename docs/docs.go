// Package docs registers the OpenAPI description of the API with swag.
// Regenerate with `swag init` after changing handler annotations.
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
        "/api/v1/health": {"get": {"tags": ["System"], "summary": "Health check", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/pricing/catalog": {"get": {"tags": ["Pricing"], "summary": "Pricing catalog", "produces": ["application/json"], "responses": {"200": {"description": "Catalog", "schema": {"$ref": "#/definitions/dto.APIResponse"}}}}},
        "/api/v1/pricing/quote": {"post": {"tags": ["Pricing"], "summary": "Calculate quote", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.QuoteRequest"}}],
            "responses": {"200": {"description": "Quote computed", "schema": {"$ref": "#/definitions/dto.APIResponse"}}, "400": {"description": "Validation failed or unknown add-on", "schema": {"$ref": "#/definitions/dto.APIResponse"}}}}},
        "/api/v1/orders": {"post": {"tags": ["Orders"], "summary": "Submit order", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.SubmitOrderRequest"}}],
            "responses": {"201": {"description": "Order received", "schema": {"$ref": "#/definitions/dto.APIResponse"}}, "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/dto.APIResponse"}}, "429": {"description": "Rate limit exceeded"}}}},
        "/api/v1/track/{trackingCode}": {"get": {"tags": ["Orders"], "summary": "Track order", "produces": ["application/json"],
            "parameters": [{"in": "path", "name": "trackingCode", "type": "string", "required": true}],
            "responses": {"200": {"description": "Order found", "schema": {"$ref": "#/definitions/dto.APIResponse"}}, "404": {"description": "Order not found", "schema": {"$ref": "#/definitions/dto.APIResponse"}}}}},
        "/api/v1/contact": {"post": {"tags": ["Contact"], "summary": "Contact form", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.ContactRequest"}}],
            "responses": {"200": {"description": "Message sent"}, "400": {"description": "Validation failed"}, "502": {"description": "Delivery failed, retryable"}}}},
        "/api/v1/admin/auth/captcha/init": {"get": {"tags": ["Admin Authentication"], "summary": "Admin captcha init", "responses": {"200": {"description": "Captcha initialized"}, "503": {"description": "Captcha disabled"}}}},
        "/api/v1/admin/auth/login": {"post": {"tags": ["Admin Authentication"], "summary": "Admin login", "consumes": ["application/json"],
            "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.AdminLoginRequest"}}],
            "responses": {"200": {"description": "Login successful"}, "400": {"description": "Invalid request or captcha"}, "401": {"description": "Incorrect credentials"}, "403": {"description": "Admin inactive"}}}},
        "/api/v1/admin/auth/check": {"get": {"tags": ["Admin Authentication"], "summary": "Admin session check", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Authenticated"}, "401": {"description": "Unauthorized"}}}},
        "/api/v1/admin/auth/logout": {"post": {"tags": ["Admin Authentication"], "summary": "Admin logout", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Logged out"}, "401": {"description": "Unauthorized"}}}},
        "/api/v1/admin/orders": {"get": {"tags": ["Admin Orders"], "summary": "List orders", "security": [{"BearerAuth": []}],
            "parameters": [{"in": "query", "name": "status", "type": "string"}, {"in": "query", "name": "search", "type": "string"}, {"in": "query", "name": "limit", "type": "integer"}, {"in": "query", "name": "offset", "type": "integer"}],
            "responses": {"200": {"description": "Orders"}, "400": {"description": "Unknown status"}}}},
        "/api/v1/admin/orders/export.csv": {"get": {"tags": ["Admin Orders"], "summary": "Export orders (CSV)", "produces": ["text/csv"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "CSV file", "schema": {"type": "file"}}}}},
        "/api/v1/admin/orders/export.xlsx": {"get": {"tags": ["Admin Orders"], "summary": "Export orders (Excel)", "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Excel file", "schema": {"type": "file"}}}}},
        "/api/v1/admin/orders/{id}": {
            "get": {"tags": ["Admin Orders"], "summary": "Get order", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "Order"}, "404": {"description": "Order not found"}}},
            "patch": {"tags": ["Admin Orders"], "summary": "Update order", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}, {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.AdminUpdateOrderRequest"}}], "responses": {"200": {"description": "Order updated"}, "400": {"description": "Invalid status"}, "404": {"description": "Order not found"}, "409": {"description": "Status transition not allowed"}}}
        },
        "/api/v1/admin/orders/{id}/status": {"put": {"tags": ["Admin Orders"], "summary": "Update order status", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}, {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.AdminUpdateStatusRequest"}}], "responses": {"200": {"description": "Status updated"}, "400": {"description": "Invalid status"}, "404": {"description": "Order not found"}, "409": {"description": "Status transition not allowed"}}}},
        "/api/v1/admin/orders/{id}/final-price": {"put": {"tags": ["Admin Orders"], "summary": "Set final price", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}, {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.AdminSetFinalPriceRequest"}}], "responses": {"200": {"description": "Price updated"}, "404": {"description": "Order not found"}}}},
        "/api/v1/admin/orders/{id}/send-quote": {"post": {"tags": ["Admin Orders"], "summary": "Send quote", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "Quote sent"}, "404": {"description": "Order not found"}, "502": {"description": "Delivery failed, retryable"}}}},
        "/api/v1/admin/orders/{id}/history": {"get": {"tags": ["Admin Orders"], "summary": "Order status history", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "History"}, "404": {"description": "Order not found"}}}}
    },
    "definitions": {
        "dto.APIResponse": {"type": "object", "properties": {"success": {"type": "boolean"}, "message": {"type": "string"}, "data": {}, "error": {}}},
        "dto.AddOnRequestDTO": {"type": "object", "properties": {"id": {"type": "string", "example": "windows_1"}, "quantity": {"type": "integer", "example": 2}}},
        "dto.QuoteRequest": {"type": "object", "required": ["service_type", "area"], "properties": {"service_type": {"type": "string", "example": "residential_weekly"}, "area": {"type": "integer", "example": 45}, "add_ons": {"type": "array", "items": {"$ref": "#/definitions/dto.AddOnRequestDTO"}}}},
        "dto.SubmitOrderRequest": {"type": "object", "properties": {
            "first_name": {"type": "string"}, "last_name": {"type": "string"}, "email": {"type": "string"}, "phone": {"type": "string"},
            "street": {"type": "string"}, "house_number": {"type": "string"}, "postal_code": {"type": "string", "example": "34-300"}, "city": {"type": "string"},
            "cleaning_type": {"type": "string", "example": "basic"}, "square_meters": {"type": "integer", "example": 45}, "preferred_date": {"type": "string", "example": "2026-05-04"},
            "additional_notes": {"type": "string"}, "quote": {"type": "object"}}},
        "dto.ContactRequest": {"type": "object", "required": ["name", "email", "message"], "properties": {"name": {"type": "string"}, "email": {"type": "string"}, "phone": {"type": "string"}, "subject": {"type": "string"}, "message": {"type": "string"}}},
        "dto.AdminLoginRequest": {"type": "object", "required": ["username", "password"], "properties": {"username": {"type": "string"}, "password": {"type": "string"}, "challenge_id": {"type": "string"}, "user_angle": {"type": "number"}}},
        "dto.AdminUpdateStatusRequest": {"type": "object", "required": ["status"], "properties": {"status": {"type": "string", "example": "in_progress"}, "admin_notes": {"type": "string"}}},
        "dto.AdminSetFinalPriceRequest": {"type": "object", "properties": {"final_price": {"type": "string", "example": "250"}}},
        "dto.AdminUpdateOrderRequest": {"type": "object", "properties": {"status": {"type": "string"}, "admin_notes": {"type": "string"}, "final_price": {"type": "string"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Cleaning Orders API",
	Description:      "Price calculator, order intake, tracking and back-office order management.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
