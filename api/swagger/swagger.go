package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Elimika Availability API",
        "description": "Instructor availability, schedule recurrence and session booking",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Availability", "description": "Recurring availability and block rules"},
        {"name": "Bookings", "description": "One-off bookings and explicit blocks"},
        {"name": "Timeline", "description": "Computed, merged schedule views"},
        {"name": "Sessions", "description": "Recurring class series preview and commit"},
        {"name": "Exports", "description": "Schedule exports (CSV, PDF, ICS)"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/availability-rules": {
            "get": {
                "tags": ["Availability"],
                "summary": "List availability rules",
                "parameters": [
                    {"name": "owner_id", "in": "query", "type": "string"},
                    {"name": "kind", "in": "query", "type": "string", "enum": ["WEEKLY", "MONTHLY", "CUSTOM"]},
                    {"name": "is_available", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Availability"],
                "summary": "Declare an availability or block rule",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRuleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/availability-rules/{id}": {
            "get": {
                "tags": ["Availability"],
                "summary": "Get availability rule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Availability"],
                "summary": "Update availability rule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateRuleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Availability"],
                "summary": "Delete availability rule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/bookings": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Store a one-off booking or explicit block",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBookingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings/{id}": {
            "delete": {
                "tags": ["Bookings"],
                "summary": "Delete booking",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/owners/{id}/bookings": {
            "get": {
                "tags": ["Bookings"],
                "summary": "List an owner's stored bookings",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "start", "in": "query", "type": "string", "format": "date"},
                    {"name": "end", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/owners/{id}/timeline": {
            "get": {
                "tags": ["Timeline"],
                "summary": "Compute an owner's timeline for a window",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "start", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "end", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "granularity", "in": "query", "type": "string", "enum": ["DAY", "WEEK", "MONTH"]},
                    {"name": "tz", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid window, granularity or timezone"}
                }
            }
        },
        "/owners/{id}/schedule/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export an owner's schedule window",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "start", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "end", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf", "ics"]},
                    {"name": "tz", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Rendered export"}
                }
            }
        },
        "/sessions/preview": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Resolve a session series without persisting it",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Conflict report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Commit a session series",
                "parameters": [
                    {"name": "If-Match", "in": "header", "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Committed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Series conflicts with existing schedule"},
                    "412": {"description": "Timeline changed since preview"}
                }
            }
        }
    },
    "definitions": {
        "CreateRuleRequest": {
            "type": "object",
            "required": ["owner_id", "kind", "is_available", "timezone"],
            "properties": {
                "owner_id": {"type": "string"},
                "kind": {"type": "string", "enum": ["WEEKLY", "MONTHLY", "CUSTOM"]},
                "day_of_week": {"type": "integer", "minimum": 0, "maximum": 6},
                "specific_date": {"type": "string", "format": "date-time"},
                "start_time": {"type": "string", "example": "09:00"},
                "end_time": {"type": "string", "example": "10:00"},
                "all_day": {"type": "boolean"},
                "is_available": {"type": "boolean"},
                "block_reason": {"type": "string"},
                "recurrence_interval": {"type": "integer", "minimum": 1},
                "effective_from": {"type": "string", "format": "date-time"},
                "effective_until": {"type": "string", "format": "date-time"},
                "timezone": {"type": "string", "example": "Africa/Nairobi"}
            }
        },
        "UpdateRuleRequest": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["WEEKLY", "MONTHLY", "CUSTOM"]},
                "day_of_week": {"type": "integer"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "all_day": {"type": "boolean"},
                "is_available": {"type": "boolean"},
                "block_reason": {"type": "string"},
                "recurrence_interval": {"type": "integer"},
                "effective_from": {"type": "string", "format": "date-time"},
                "effective_until": {"type": "string", "format": "date-time"},
                "timezone": {"type": "string"}
            }
        },
        "CreateBookingRequest": {
            "type": "object",
            "required": ["owner_id", "start_at", "end_at", "status"],
            "properties": {
                "owner_id": {"type": "string"},
                "start_at": {"type": "string", "format": "date-time"},
                "end_at": {"type": "string", "format": "date-time"},
                "status": {"type": "string", "enum": ["BOOKED", "BLOCKED"]},
                "reason": {"type": "string"}
            }
        },
        "SessionRequest": {
            "type": "object",
            "required": ["owner_id", "window_start", "window_end", "recurrence", "conflict_resolution"],
            "properties": {
                "owner_id": {"type": "string"},
                "window_start": {"type": "string", "format": "date-time"},
                "window_end": {"type": "string", "format": "date-time"},
                "recurrence": {"$ref": "#/definitions/Recurrence"},
                "conflict_resolution": {"type": "string", "enum": ["FAIL", "SKIP", "OVERRIDE"]}
            }
        },
        "Recurrence": {
            "type": "object",
            "required": ["type", "occurrence_count"],
            "properties": {
                "type": {"type": "string", "enum": ["DAILY", "WEEKLY", "MONTHLY", "YEARLY"]},
                "interval": {"type": "integer", "minimum": 1},
                "days_of_week": {"type": "array", "items": {"type": "integer"}},
                "occurrence_count": {"type": "integer", "minimum": 1}
            }
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
