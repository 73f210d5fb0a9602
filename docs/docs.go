// Package docs registra el documento OpenAPI del dashboard en swag.
// Se mantiene a mano junto con las anotaciones de los handlers.
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
    "paths": {
        "/health": {
            "get": {"tags": ["system"], "summary": "Health check", "produces": ["text/plain"], "responses": {"200": {"description": "ok"}}}
        },
        "/login": {
            "get": {"tags": ["session"], "summary": "Entrada de login", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/session": {
            "post": {
                "tags": ["session"], "summary": "Guardar token de sesión",
                "consumes": ["application/json"],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/session.tokenRequest"}}],
                "responses": {"204": {"description": "guardado"}, "400": {"description": "token vacío"}}
            },
            "delete": {"tags": ["session"], "summary": "Cerrar sesión", "responses": {"204": {"description": "borrado"}}}
        },
        "/patients": {
            "get": {"tags": ["patients"], "summary": "Listar pacientes", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/patients.PatientsResponse"}}}},
            "post": {
                "tags": ["patients"], "summary": "Crear paciente",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/patients.CreatePatientData"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/patients.Patient"}}, "400": {"description": "validación"}}
            }
        },
        "/patients/{patientID}": {
            "get": {
                "tags": ["patients"], "summary": "Obtener paciente", "produces": ["application/json"],
                "parameters": [{"$ref": "#/parameters/patientID"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/patients.Patient"}}, "404": {"description": "no existe"}}
            }
        },
        "/patients/{patientID}/medications": {
            "get": {
                "tags": ["medications"], "summary": "Listar medicamentos del paciente", "produces": ["application/json"],
                "parameters": [{"$ref": "#/parameters/patientID"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/medications.MedicationsResponse"}}, "502": {"description": "API inalcanzable"}, "504": {"description": "timeout"}}
            },
            "post": {
                "tags": ["medications"], "summary": "Crear medicamento",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"$ref": "#/parameters/patientID"}, {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/medications.CreateMedicationData"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/medications.Medication"}}, "400": {"description": "validación"}}
            }
        },
        "/patients/{patientID}/medications/{medicationID}": {
            "put": {
                "tags": ["medications"], "summary": "Actualizar medicamento",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"$ref": "#/parameters/patientID"}, {"$ref": "#/parameters/medicationID"}, {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/medications.CreateMedicationData"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/medications.Medication"}}, "400": {"description": "validación"}}
            }
        },
        "/patients/{patientID}/medication-schedules": {
            "get": {
                "tags": ["schedules"], "summary": "Horarios del paciente", "produces": ["application/json"],
                "parameters": [{"$ref": "#/parameters/patientID"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/patients/{patientID}/medications/{medicationID}/schedules": {
            "get": {
                "tags": ["schedules"], "summary": "Horarios de un medicamento", "produces": ["application/json"],
                "parameters": [{"$ref": "#/parameters/patientID"}, {"$ref": "#/parameters/medicationID"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/schedules.MedicationSchedule"}}}}
            },
            "post": {
                "tags": ["schedules"], "summary": "Crear horarios en lote",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"$ref": "#/parameters/patientID"}, {"$ref": "#/parameters/medicationID"}, {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/schedules.BulkCreateRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"type": "array", "items": {"$ref": "#/definitions/schedules.MedicationSchedule"}}}, "400": {"description": "validación"}}
            }
        },
        "/patients/{patientID}/medication-administrations": {
            "get": {
                "tags": ["administrations"], "summary": "Dosis registradas del paciente", "produces": ["application/json"],
                "parameters": [{"$ref": "#/parameters/patientID"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/administrations.MedicationAdministration"}}}}
            },
            "post": {
                "tags": ["administrations"], "summary": "Registrar dosis administrada",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"$ref": "#/parameters/patientID"}, {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/administrations.CreateMedicationAdministrationData"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/administrations.MedicationAdministration"}}, "400": {"description": "validación"}}
            }
        },
        "/patients/{patientID}/calendar": {
            "get": {
                "tags": ["calendar"], "summary": "Calendario de dosis", "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/patientID"},
                    {"in": "query", "name": "start", "type": "string", "description": "YYYY-MM-DD"},
                    {"in": "query", "name": "days", "type": "integer", "description": "default 14, máx 62"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}, "400": {"description": "parámetros inválidos"}}
            }
        }
    },
    "parameters": {
        "patientID": {"in": "path", "name": "patientID", "type": "string", "required": true, "description": "ID del paciente"},
        "medicationID": {"in": "path", "name": "medicationID", "type": "string", "required": true, "description": "ID del medicamento"}
    },
    "definitions": {
        "session.tokenRequest": {"type": "object", "properties": {"token": {"type": "string"}}},
        "patients.Patient": {"type": "object", "properties": {
            "patientId": {"type": "string"}, "firstName": {"type": "string"}, "lastName": {"type": "string"},
            "dateOfBirth": {"type": "string"}, "createdAt": {"type": "string"}, "updatedAt": {"type": "string"}}},
        "patients.PatientsResponse": {"type": "object", "properties": {
            "message": {"type": "string"}, "count": {"type": "integer"},
            "patients": {"type": "array", "items": {"$ref": "#/definitions/patients.Patient"}}}},
        "patients.CreatePatientData": {"type": "object", "properties": {
            "first_name": {"type": "string"}, "last_name": {"type": "string"}, "date_of_birth": {"type": "string"}}},
        "medications.Medication": {"type": "object", "properties": {
            "medicationId": {"type": "string"}, "patientId": {"type": "string"}, "name": {"type": "string"},
            "genericName": {"type": "string"}, "strength": {"type": "string"}, "unit": {"type": "string"},
            "form": {"type": "string"}, "dosageAmount": {"type": "number"}, "frequencyPerDay": {"type": "integer"},
            "specialInstructions": {"type": "string"}, "isActive": {"type": "boolean"},
            "createdAt": {"type": "string"}, "updatedAt": {"type": "string"}}},
        "medications.MedicationsResponse": {"type": "object", "properties": {
            "message": {"type": "string"}, "count": {"type": "integer"},
            "medications": {"type": "array", "items": {"$ref": "#/definitions/medications.Medication"}}}},
        "medications.CreateMedicationData": {"type": "object", "properties": {
            "name": {"type": "string"}, "generic_name": {"type": "string"}, "strength": {"type": "string"},
            "unit": {"type": "string"}, "form": {"type": "string"}, "dosage_amount": {"type": "number"},
            "frequency_per_day": {"type": "integer"}, "special_instructions": {"type": "string"}, "is_active": {"type": "boolean"}}},
        "schedules.MedicationSchedule": {"type": "object", "properties": {
            "scheduleId": {"type": "string"}, "medicationId": {"type": "string"}, "dayOfWeek": {"type": "integer"},
            "timeOfDay": {"type": "string"}, "isActive": {"type": "boolean"},
            "createdAt": {"type": "string"}, "updatedAt": {"type": "string"}}},
        "schedules.CreateMedicationScheduleData": {"type": "object", "properties": {
            "medication_id": {"type": "string"}, "day_of_week": {"type": "integer"},
            "time_of_day": {"type": "string"}, "is_active": {"type": "boolean"}}},
        "schedules.BulkCreateRequest": {"type": "object", "properties": {
            "schedules": {"type": "array", "items": {"$ref": "#/definitions/schedules.CreateMedicationScheduleData"}}}},
        "administrations.MedicationAdministration": {"type": "object", "properties": {
            "administrationId": {"type": "string"}, "medicationId": {"type": "string"},
            "scheduledDatetime": {"type": "string"}, "actualDatetime": {"type": "string"},
            "administeredBy": {"type": "string"}, "notes": {"type": "string"},
            "createdAt": {"type": "string"}, "updatedAt": {"type": "string"}}},
        "administrations.CreateMedicationAdministrationData": {"type": "object", "properties": {
            "medication_id": {"type": "string"}, "scheduled_datetime": {"type": "string"},
            "actual_datetime": {"type": "string"}, "administered_by": {"type": "string"}, "notes": {"type": "string"}}}
    }
}`

// SwaggerInfo lo sirve http-swagger en /swagger/*.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Medication Dashboard",
	Description:      "Vista HTTP del dashboard de medicación: lecturas cacheadas y escrituras optimistas contra el API remoto.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
