package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SGE API",
        "description": "Didactic planning management backend",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh and session management"},
        {"name": "Users", "description": "User administration"},
        {"name": "Plannings", "description": "Didactic planning submission and review"},
        {"name": "Evidences", "description": "Training evidence uploads and review"},
        {"name": "Progress", "description": "Partial progress tracking"},
        {"name": "Reports", "description": "Compliance, progress and training reports"},
        {"name": "Calendar", "description": "Deadline and checkpoint calendar"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Change own password",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current session info",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "is_active", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create user",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get user",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Users"],
                "summary": "Update user",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateUserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Users"],
                "summary": "Deactivate user",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/plannings": {
            "get": {
                "tags": ["Plannings"],
                "summary": "List plannings",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "partial", "in": "query", "type": "integer"},
                    {"name": "cycle", "in": "query", "type": "string"},
                    {"name": "professor_id", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Plannings"],
                "summary": "Submit planning",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "course_name", "in": "formData", "required": true, "type": "string"},
                    {"name": "partial", "in": "formData", "required": true, "type": "integer"},
                    {"name": "cycle", "in": "formData", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plannings/{id}": {
            "get": {
                "tags": ["Plannings"],
                "summary": "Get planning",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Plannings"],
                "summary": "Update planning",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Planning is not editable"}
                }
            },
            "delete": {
                "tags": ["Plannings"],
                "summary": "Delete planning",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/plannings/{id}/review": {
            "post": {
                "tags": ["Plannings"],
                "summary": "Review planning",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plannings/{id}/history": {
            "get": {
                "tags": ["Plannings"],
                "summary": "Prior cycle submissions for the same course",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plannings/{id}/progress": {
            "get": {
                "tags": ["Progress"],
                "summary": "Progress entries for a planning",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/evidences": {
            "get": {
                "tags": ["Evidences"],
                "summary": "List evidences",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "start_date", "in": "query", "type": "string"},
                    {"name": "end_date", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Evidences"],
                "summary": "Upload evidence",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "course_name", "in": "formData", "required": true, "type": "string"},
                    {"name": "institution", "in": "formData", "required": true, "type": "string"},
                    {"name": "date", "in": "formData", "required": true, "type": "string"},
                    {"name": "hours", "in": "formData", "required": true, "type": "integer"},
                    {"name": "file", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/evidences/{id}": {
            "get": {
                "tags": ["Evidences"],
                "summary": "Get evidence",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Evidences"],
                "summary": "Update evidence",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Evidences"],
                "summary": "Delete evidence",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/evidences/{id}/review": {
            "post": {
                "tags": ["Evidences"],
                "summary": "Review evidence",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/progress": {
            "get": {
                "tags": ["Progress"],
                "summary": "List progress entries",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "partial", "in": "query", "type": "integer"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Progress"],
                "summary": "Record progress",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateProgressRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/progress/stats": {
            "get": {
                "tags": ["Progress"],
                "summary": "Aggregate progress statistics",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/progress/{id}": {
            "get": {
                "tags": ["Progress"],
                "summary": "Get progress entry",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Progress"],
                "summary": "Update progress entry",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Progress"],
                "summary": "Delete progress entry",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/reports/compliance": {
            "get": {
                "tags": ["Reports"],
                "summary": "Planning compliance report",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "cycle", "in": "query", "type": "string"},
                    {"name": "partial", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/progress": {
            "get": {
                "tags": ["Reports"],
                "summary": "Progress report by professor",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "partial", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/training": {
            "get": {
                "tags": ["Reports"],
                "summary": "Training hours report",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "start_date", "in": "query", "type": "string"},
                    {"name": "end_date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{type}/export": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export a report as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "type", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/calendar/events": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Upcoming deadlines and checkpoints",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "kind", "in": "query", "type": "string"},
                    {"name": "max_results", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/notify": {
            "post": {
                "tags": ["Calendar"],
                "summary": "Queue reminders for imminent events",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "notice_hours", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RefreshTokenRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            },
            "required": ["refresh_token"]
        },
        "ChangePasswordRequest": {
            "type": "object",
            "properties": {
                "current_password": {"type": "string"},
                "new_password": {"type": "string"}
            },
            "required": ["current_password", "new_password"]
        },
        "CreateUserRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "coordinator", "professor"]}
            },
            "required": ["name", "email", "password", "role"]
        },
        "UpdateUserRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "role": {"type": "string"},
                "is_active": {"type": "boolean"}
            }
        },
        "ReviewRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "feedback": {"type": "string"}
            },
            "required": ["status", "feedback"]
        },
        "CreateProgressRequest": {
            "type": "object",
            "properties": {
                "planning_id": {"type": "string"},
                "partial": {"type": "integer"},
                "progress_percentage": {"type": "number"},
                "achievements": {"type": "string"},
                "challenges": {"type": "string"},
                "adjustments": {"type": "string"}
            },
            "required": ["planning_id", "partial", "progress_percentage"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
