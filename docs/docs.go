// Package docs holds the Swagger document served at /swagger/*any.
// It is maintained by hand; keep it in step with the handler annotations.
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
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Liveness",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/alerts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["readings"],
                "summary": "Anomalous latest readings",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.DerivedReading"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/events": {
            "get": {
                "description": "Alert events recorded by the pipeline. A date-only 'to' is treated as end of day.",
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "Anomaly history",
                "parameters": [
                    {"type": "string", "example": "2025-08-01", "description": "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')", "name": "from", "in": "query"},
                    {"type": "string", "example": "2025-08-31", "description": "End of range; date-only treated as end of day", "name": "to", "in": "query"},
                    {"type": "string", "example": "PUMP_A", "description": "Machine identifier", "name": "machine_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "count, events", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/machines": {
            "get": {
                "description": "Latest reading per machine as stored in SQLite, with the time it was recorded",
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "Mirrored machine rows",
                "responses": {
                    "200": {"description": "count, machines", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["readings"],
                "summary": "Health band per machine",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"$ref": "#/definitions/models.MachineHealth"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/query": {
            "post": {
                "description": "Answers using the live readings and the maintenance documents",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["assistant"],
                "summary": "Ask the maintenance assistant",
                "parameters": [
                    {"description": "Question", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.QueryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.QueryResult"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/sensors": {
            "get": {
                "produces": ["application/json"],
                "tags": ["readings"],
                "summary": "Latest reading per machine",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MachineHealthView"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/summary": {
            "get": {
                "produces": ["application/json"],
                "tags": ["readings"],
                "summary": "Fleet summary",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Summary"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/ws": {
            "get": {
                "description": "On connect and whenever a machine has a new reading pushes \"alert\" envelopes for machines that just turned anomalous, then \"health\" (map machine_id -> health) and \"summary\". Polls every ?interval=2s or ?interval_ms=2000 (max 30s).",
                "tags": ["readings"],
                "summary": "Live health stream",
                "responses": {}
            }
        }
    },
    "definitions": {
        "handlers.QueryRequest": {
            "type": "object",
            "required": ["question"],
            "properties": {
                "question": {"description": "Free-text maintenance question", "type": "string", "example": "Why is PUMP_A flagged?"}
            }
        },
        "models.DerivedReading": {
            "type": "object",
            "properties": {
                "alert_message": {"description": "empty when healthy", "type": "string"},
                "health_score": {"description": "0..100, one decimal", "type": "number"},
                "is_anomaly": {"type": "boolean"},
                "machine_id": {"type": "string"},
                "pressure": {"type": "number"},
                "temperature": {"type": "number"},
                "timestamp": {"type": "string"},
                "vibration": {"type": "number"}
            }
        },
        "models.MachineHealth": {
            "type": "object",
            "properties": {
                "color": {"type": "string"},
                "health_score": {"type": "number"},
                "is_anomaly": {"type": "boolean"},
                "latest_reading": {"$ref": "#/definitions/models.DerivedReading"},
                "status": {"description": "healthy | warning | critical | danger", "type": "string"}
            }
        },
        "models.MachineHealthView": {
            "type": "object",
            "additionalProperties": {"$ref": "#/definitions/models.DerivedReading"}
        },
        "models.Summary": {
            "type": "object",
            "properties": {
                "anomaly_machines": {"type": "integer"},
                "average_health_score": {"type": "number"},
                "healthy_machines": {"type": "integer"},
                "total_machines": {"type": "integer"}
            }
        },
        "service.QueryResult": {
            "type": "object",
            "properties": {
                "answer": {"type": "string"},
                "sources": {"type": "array", "items": {"type": "string"}}
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
	Title:            "FailureGuard API",
	Description:      "Predictive-maintenance backend: latest machine readings, health bands, anomaly history and an LLM maintenance assistant.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
