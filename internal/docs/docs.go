// Package docs registers the OpenAPI document served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o internal/docs
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
    "tags": [
        {"name": "portfolio", "description": "Dashboard valuation and snapshots"},
        {"name": "clients", "description": "Client profiles and capital movements"},
        {"name": "trades", "description": "BUY and SELL entries"},
        {"name": "transactions", "description": "Full ledger log"}
    ],
    "paths": {
        "/portfolio": {
            "get": {
                "produces": ["application/json"],
                "tags": ["portfolio"],
                "summary": "Get portfolio dashboard",
                "responses": {"200": {"description": "Dashboard"}, "409": {"description": "Superseded by a newer refresh"}, "503": {"description": "Ledger unavailable"}}
            }
        },
        "/portfolio/snapshots": {
            "get": {
                "produces": ["application/json"],
                "tags": ["portfolio"],
                "summary": "Get portfolio snapshots",
                "parameters": [
                    {"type": "string", "name": "from_date", "in": "query", "required": true},
                    {"type": "string", "name": "to_date", "in": "query", "required": true},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "Paginated snapshots"}, "400": {"description": "Invalid input"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["portfolio"],
                "summary": "Record portfolio snapshot",
                "responses": {"201": {"description": "Snapshot recorded"}, "400": {"description": "Invalid input"}}
            }
        },
        "/clients": {
            "get": {
                "produces": ["application/json"],
                "tags": ["clients"],
                "summary": "List clients",
                "responses": {"200": {"description": "Paginated clients"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["clients"],
                "summary": "Create a client",
                "responses": {"201": {"description": "Client created"}, "400": {"description": "Invalid input"}, "409": {"description": "Duplicate email"}}
            }
        },
        "/clients/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["clients"],
                "summary": "Get a client",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "Client"}, "404": {"description": "Client not found"}}
            }
        },
        "/clients/{id}/funds": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["clients"],
                "summary": "Deposit or withdraw client funds",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "Updated client and ledger row"}, "422": {"description": "Withdrawal exceeds deposited capital"}}
            }
        },
        "/trades": {
            "get": {
                "produces": ["application/json"],
                "tags": ["trades"],
                "summary": "List trades",
                "responses": {"200": {"description": "Paginated trades"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["trades"],
                "summary": "Record a trade",
                "responses": {"201": {"description": "Trade recorded"}, "400": {"description": "Invalid input"}, "404": {"description": "Client not found"}}
            }
        },
        "/transactions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Get transaction log",
                "parameters": [
                    {"type": "string", "name": "type", "in": "query"},
                    {"type": "string", "name": "profile_id", "in": "query"}
                ],
                "responses": {"200": {"description": "Paginated transactions"}, "400": {"description": "Invalid input"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Fundledger API",
	Description:      "Portfolio accounting for a pooled fund: ledger, live valuation, intraday P&L and client ownership.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
