package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "AIS Tutor API",
        "description": "Scheduling assistant for private tutors: slot ranking, conflict-aware booking and client management",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Slots", "description": "Slot ranking and conflict-aware booking"},
        {"name": "Weights", "description": "Per-tutor ranking configuration"},
        {"name": "Clients", "description": "Client roster management"},
        {"name": "Lessons", "description": "Lesson scheduling"},
        {"name": "Payments", "description": "Payment bookkeeping"},
        {"name": "SlotRequests", "description": "Incoming client slot requests"},
        {"name": "System", "description": "Health and runtime statistics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["System"],
                "summary": "Health check with runtime counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["System"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/slots/rank": {
            "post": {
                "tags": ["Slots"],
                "summary": "Rank proposed slots for a client",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RankSlotsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/slots/select": {
            "post": {
                "tags": ["Slots"],
                "summary": "Book a lesson from a chosen slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectSlotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/BookingConflict"}}
                }
            }
        },
        "/slots/replace": {
            "post": {
                "tags": ["Slots"],
                "summary": "Replace a conflicting lesson with a new booking",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplaceSlotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/BookingConflict"}}
                }
            }
        },
        "/slots/weights": {
            "get": {
                "tags": ["Weights"],
                "summary": "Get ranking configuration",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Weights"],
                "summary": "Update ranking configuration",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSlotWeightsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Weights"],
                "summary": "Reset ranking configuration to defaults",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/slots/weights/all": {
            "get": {
                "tags": ["Weights"],
                "summary": "List every stored ranking configuration (admin)",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/clients": {
            "get": {
                "tags": ["Clients"],
                "summary": "List clients",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "vip", "in": "query", "type": "boolean"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"},
                    {"name": "sort_by", "in": "query", "type": "string"},
                    {"name": "sort_order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Clients"],
                "summary": "Register a client",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateClientRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/clients/{id}": {
            "get": {
                "tags": ["Clients"],
                "summary": "Get client",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Clients"],
                "summary": "Update client",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateClientRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Clients"],
                "summary": "Delete client",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/lessons": {
            "get": {
                "tags": ["Lessons"],
                "summary": "List lessons",
                "parameters": [
                    {"name": "client_id", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Lessons"],
                "summary": "Book a lesson at an explicit time",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateLessonRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/BookingConflict"}}
                }
            }
        },
        "/lessons/{id}": {
            "get": {
                "tags": ["Lessons"],
                "summary": "Get lesson",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Lessons"],
                "summary": "Update lesson",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateLessonRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/BookingConflict"}}
                }
            },
            "delete": {
                "tags": ["Lessons"],
                "summary": "Delete lesson",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/payments": {
            "get": {
                "tags": ["Payments"],
                "summary": "List payments",
                "parameters": [
                    {"name": "client_id", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Payments"],
                "summary": "Record a payment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePaymentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/summary": {
            "get": {
                "tags": ["Payments"],
                "summary": "Aggregate payment totals over a period",
                "parameters": [
                    {"name": "client_id", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/{id}": {
            "get": {
                "tags": ["Payments"],
                "summary": "Get payment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Payments"],
                "summary": "Update payment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Payments"],
                "summary": "Delete payment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/slot-requests": {
            "get": {
                "tags": ["SlotRequests"],
                "summary": "List slot requests",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["SlotRequests"],
                "summary": "Register an incoming slot request",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/slot-requests/{id}/accept": {
            "post": {
                "tags": ["SlotRequests"],
                "summary": "Book one of the request's proposed windows",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/BookingConflict"}}
                }
            }
        },
        "/slot-requests/{id}/reject": {
            "post": {
                "tags": ["SlotRequests"],
                "summary": "Close a slot request without booking",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/slot-requests/{id}": {
            "get": {
                "tags": ["SlotRequests"],
                "summary": "Get slot request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["SlotRequests"],
                "summary": "Delete slot request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "definitions": {
        "CandidateSlot": {
            "type": "object",
            "properties": {
                "from": {"type": "string"},
                "to": {"type": "string"}
            },
            "required": ["from", "to"]
        },
        "RankSlotsRequest": {
            "type": "object",
            "properties": {
                "client_id": {"type": "string"},
                "proposed_slots": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/CandidateSlot"}
                }
            },
            "required": ["client_id", "proposed_slots"]
        },
        "RankedSlot": {
            "type": "object",
            "properties": {
                "from": {"type": "string"},
                "to": {"type": "string"},
                "score": {"type": "number"},
                "breakdown": {"$ref": "#/definitions/ScoreBreakdown"},
                "explanation": {"type": "string"},
                "has_conflict": {"type": "boolean"},
                "conflicting_lesson": {"$ref": "#/definitions/ConflictingLessonRef"}
            }
        },
        "ScoreBreakdown": {
            "type": "object",
            "properties": {
                "time_score": {"type": "number"},
                "compact_score": {"type": "number"},
                "working_day_score": {"type": "number"},
                "priority_score": {"type": "number"}
            }
        },
        "ConflictingLessonRef": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "client_name": {"type": "string"},
                "start_time": {"type": "string"}
            }
        },
        "SelectSlotRequest": {
            "type": "object",
            "properties": {
                "client_id": {"type": "string"},
                "slot": {"$ref": "#/definitions/CandidateSlot"},
                "duration_min": {"type": "integer"},
                "type": {"type": "string"},
                "notes": {"type": "string"}
            },
            "required": ["client_id", "slot"]
        },
        "ReplaceSlotRequest": {
            "type": "object",
            "properties": {
                "client_id": {"type": "string"},
                "slot": {"$ref": "#/definitions/CandidateSlot"},
                "conflicting_lesson_id": {"type": "string"},
                "duration_min": {"type": "integer"},
                "type": {"type": "string"},
                "notes": {"type": "string"}
            },
            "required": ["client_id", "slot", "conflicting_lesson_id"]
        },
        "BookingConflict": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "conflicting_lesson": {"$ref": "#/definitions/ConflictingLessonRef"},
                "can_replace": {"type": "boolean"}
            }
        },
        "UpdateSlotWeightsRequest": {
            "type": "object",
            "properties": {
                "w_time": {"type": "number"},
                "w_compact": {"type": "number"},
                "w_priority": {"type": "number"},
                "working_days": {"type": "array", "items": {"type": "integer"}},
                "preferred_times": {"type": "object"},
                "min_gap_minutes": {"type": "integer"},
                "max_gap_minutes": {"type": "integer"},
                "gap_importance": {"type": "number"}
            }
        },
        "CreateClientRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "vip": {"type": "boolean"},
                "notes": {"type": "string"}
            },
            "required": ["full_name"]
        },
        "UpdateClientRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "vip": {"type": "boolean"},
                "active": {"type": "boolean"},
                "notes": {"type": "string"}
            }
        },
        "CreateLessonRequest": {
            "type": "object",
            "properties": {
                "client_id": {"type": "string"},
                "start_time": {"type": "string"},
                "duration_min": {"type": "integer"},
                "type": {"type": "string"},
                "notes": {"type": "string"}
            },
            "required": ["client_id", "start_time", "duration_min"]
        },
        "UpdateLessonRequest": {
            "type": "object",
            "properties": {
                "start_time": {"type": "string"},
                "duration_min": {"type": "integer"},
                "status": {"type": "string"},
                "type": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "CreatePaymentRequest": {
            "type": "object",
            "properties": {
                "client_id": {"type": "string"},
                "amount": {"type": "number"},
                "paid_at": {"type": "string"},
                "method": {"type": "string"},
                "notes": {"type": "string"}
            },
            "required": ["client_id", "amount"]
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
