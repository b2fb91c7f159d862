// Package swagger registers the static OpenAPI document served at /docs.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Kotoba API",
        "description": "Japanese-learning classroom backend: classes, AI quizzes, AI chat",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, tokens, password"},
        {"name": "Users", "description": "Admin user management"},
        {"name": "Classrooms", "description": "Classes, enrollment, reports"},
        {"name": "Assignments", "description": "Classroom coursework"},
        {"name": "Quiz", "description": "AI-generated JLPT quizzes"},
        {"name": "Chat", "description": "AI conversation partner"},
        {"name": "Dashboard", "description": "Recent learning activity"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate by username and password",
                "responses": {
                    "200": {"description": "Token pair and user info", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Exchange a refresh token for a new token pair",
                "responses": {
                    "200": {"description": "New token pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unknown or revoked refresh token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke the presented refresh token",
                "responses": {
                    "204": {"description": "Revoked"}
                }
            }
        },
        "/auth/password": {
            "put": {
                "tags": ["Authentication"],
                "summary": "Change own password",
                "responses": {
                    "204": {"description": "Password changed, all refresh tokens revoked"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user info",
                "responses": {
                    "200": {"description": "User info", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users with role, active and search filters",
                "responses": {
                    "200": {"description": "Paginated users", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create user",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Username taken"}
                }
            }
        },
        "/admin/users/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get one user",
                "responses": {
                    "200": {"description": "User", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Users"],
                "summary": "Update username, role, active flag and optionally password",
                "responses": {
                    "200": {"description": "Updated"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Users"],
                "summary": "Delete user",
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found"},
                    "409": {"description": "User still owns classrooms"}
                }
            }
        },
        "/classrooms": {
            "post": {
                "tags": ["Classrooms"],
                "summary": "Create classroom with a fresh join code",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Could not issue a unique join code"}
                }
            }
        },
        "/classrooms/join": {
            "post": {
                "tags": ["Classrooms"],
                "summary": "Join a classroom by code",
                "responses": {
                    "200": {"description": "Joined, or already enrolled"},
                    "404": {"description": "Unknown code"}
                }
            }
        },
        "/classrooms/teaching": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "Classrooms the caller teaches",
                "responses": {
                    "200": {"description": "Classrooms", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classrooms/enrolled": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "Classrooms the caller has joined",
                "responses": {
                    "200": {"description": "Classrooms", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classrooms/{id}": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "Classroom detail",
                "responses": {
                    "200": {"description": "Detail"},
                    "403": {"description": "Not a member"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/classrooms/{id}/roster": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "Enrolled students",
                "responses": {
                    "200": {"description": "Roster"},
                    "403": {"description": "Not the owner"}
                }
            }
        },
        "/classrooms/{id}/scores": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "Per-student quiz aggregates",
                "responses": {
                    "200": {"description": "Scores"},
                    "403": {"description": "Not the owner"}
                }
            }
        },
        "/classrooms/{id}/scores/export": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "Download the score report as CSV or PDF",
                "responses": {
                    "200": {"description": "File download"},
                    "400": {"description": "Unsupported format"}
                }
            }
        },
        "/classrooms/{id}/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List classroom assignments",
                "responses": {
                    "200": {"description": "Assignments"}
                }
            },
            "post": {
                "tags": ["Assignments"],
                "summary": "Post an assignment",
                "responses": {
                    "201": {"description": "Created"},
                    "403": {"description": "Not the owner"}
                }
            }
        },
        "/quiz/generate": {
            "post": {
                "tags": ["Quiz"],
                "summary": "Generate one multiple-choice question at a JLPT level",
                "responses": {
                    "200": {"description": "Quiz item"},
                    "500": {"description": "AI failure or quota exhaustion"}
                }
            }
        },
        "/quiz/results": {
            "post": {
                "tags": ["Quiz"],
                "summary": "Save a quiz attempt",
                "responses": {
                    "201": {"description": "Learning log row"}
                }
            }
        },
        "/chat": {
            "post": {
                "tags": ["Chat"],
                "summary": "Chat with the AI persona",
                "responses": {
                    "200": {"description": "Reply, or a fixed apology on provider failure"}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Recent learning activity",
                "responses": {
                    "200": {"description": "Dashboard", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
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
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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
