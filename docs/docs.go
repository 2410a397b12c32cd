// Package docs registers the swagger document served at /swagger/doc.json.
package docs

import "github.com/swaggo/swag"

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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/leagues/{leagueID}/tiered-leagues": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["tiered-leagues"],
                "summary": "Tiered leagues of a league",
                "parameters": [{"type": "integer", "name": "leagueID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/tiered-leagues": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["tiered-leagues"],
                "summary": "Create a tiered league",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}, "422": {"description": "Invalid configuration"}}
            }
        },
        "/tiered-leagues/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["tiered-leagues"],
                "summary": "Get a tiered league",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["tiered-leagues"],
                "summary": "Update tier configuration",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "422": {"description": "Invalid configuration"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["tiered-leagues"],
                "summary": "Delete a tiered league",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/tiered-leagues/{id}/tier-names": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["tiered-leagues"],
                "summary": "Tier numbers and names",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/tiered-leagues/{id}/standings": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["tiered-leagues"],
                "summary": "Tier standings",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "tier", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "503": {"description": "Race results unavailable"}}
            }
        },
        "/tiered-leagues/{id}/drivers/{profileID}/tier": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["tiered-leagues"],
                "summary": "Current tier of a driver",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "profileID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not assigned"}}
            }
        },
        "/tiered-leagues/{id}/assignments": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["tier-assignments"],
                "summary": "Current tier assignments",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "tier", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["tier-assignments"],
                "summary": "Assign an enrolled driver to a tier",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "200": {"description": "Repeated request"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}
            }
        },
        "/tiered-leagues/{id}/assignments/{profileID}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["tier-assignments"],
                "summary": "Remove a driver from the tiers",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "profileID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/tiered-leagues/{id}/move-driver": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["tier-assignments"],
                "summary": "Move a driver to another tier outside a shuffle",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}
            }
        },
        "/tiered-leagues/{id}/shuffle": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["shuffles"],
                "summary": "Evaluate and apply a tier shuffle",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "boolean", "name": "force", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "412": {"description": "No drivers assigned"}, "503": {"description": "Rolled back"}}
            }
        },
        "/tiered-leagues/{id}/shuffle/preview": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["shuffles"],
                "summary": "Preview the next tier shuffle",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "412": {"description": "No drivers assigned"}}
            }
        },
        "/tiered-leagues/{id}/movements": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["shuffles"],
                "summary": "Movement ledger of a tiered league",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "profile_id", "in": "query"},
                    {"type": "string", "name": "shuffle_id", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/competitions/{competitionID}/race-completed": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["shuffles"],
                "summary": "Notify that a race of a competition finished",
                "parameters": [{"type": "integer", "name": "competitionID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/me/tier-notifications": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["notifications"],
                "summary": "Tier movement notifications of the caller",
                "parameters": [{"type": "boolean", "name": "unread", "in": "query"}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/me/tier-notifications/{notificationID}/mark-read": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["notifications"],
                "summary": "Mark one notification as read",
                "parameters": [{"type": "integer", "name": "notificationID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "404": {"description": "Not Found"}}
            }
        },
        "/me/tier-notifications/read-all": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["notifications"],
                "summary": "Mark every notification of the caller as read",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Karting League Tier API",
	Description:      "Tier promotion and relegation for karting leagues.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
