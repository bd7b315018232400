// Package docs registra el documento OpenAPI servido en /swagger/.
// Se regenera con: swag init -g cmd/api/main.go -o docs
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
        "/api/atenciones": {
            "get": {
                "produces": ["application/json"],
                "tags": ["atenciones"],
                "summary": "Buscar atenciones",
                "parameters": [
                    {"type": "integer", "name": "numero", "in": "query"},
                    {"type": "string", "name": "tipo_atencion", "in": "query"},
                    {"type": "string", "name": "especie", "in": "query"},
                    {"type": "string", "name": "dni", "in": "query"},
                    {"type": "string", "name": "barrio", "in": "query"},
                    {"type": "string", "name": "nombre_animal", "in": "query"},
                    {"type": "string", "name": "fecha_desde", "in": "query"},
                    {"type": "string", "name": "fecha_hasta", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["atenciones"],
                "summary": "Registrar atención",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/atenciones/{numero}": {
            "get": {
                "tags": ["atenciones"],
                "summary": "Obtener atención por número",
                "parameters": [{"type": "integer", "name": "numero", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "patch": {
                "tags": ["atenciones"],
                "summary": "Editar atención",
                "parameters": [{"type": "integer", "name": "numero", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "tags": ["atenciones"],
                "summary": "Eliminar atención",
                "parameters": [{"type": "integer", "name": "numero", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/atenciones/{numero}/tutor": {
            "patch": {
                "tags": ["atenciones"],
                "summary": "Editar contacto del tutor",
                "parameters": [{"type": "integer", "name": "numero", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/tutores": {
            "get": {
                "tags": ["tutores"],
                "summary": "Buscar tutor por DNI",
                "parameters": [{"type": "string", "name": "dni", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/tutores/{id}": {
            "get": {
                "tags": ["tutores"],
                "summary": "Obtener tutor",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/siguiente-numero": {
            "get": {
                "tags": ["atenciones"],
                "summary": "Próximo número de registro",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/castraciones": {
            "get": {
                "tags": ["castraciones"],
                "summary": "Listar castraciones (compatibilidad)",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["castraciones"],
                "summary": "Registrar castración (compatibilidad)",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/turnos": {
            "get": {
                "tags": ["turnos"],
                "summary": "Listar turnos",
                "parameters": [
                    {"type": "string", "name": "desde", "in": "query"},
                    {"type": "string", "name": "hasta", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["turnos"],
                "summary": "Agendar turno",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/turnos/{id}": {
            "put": {
                "tags": ["turnos"],
                "summary": "Cambiar estado del turno",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "tags": ["turnos"],
                "summary": "Eliminar turno",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/auditoria": {
            "get": {
                "tags": ["auditoria"],
                "summary": "Últimas entradas de auditoría",
                "parameters": [{"type": "integer", "name": "limite", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/auditoria/{table}/{recordID}": {
            "get": {
                "tags": ["auditoria"],
                "summary": "Historial de un registro",
                "parameters": [
                    {"type": "string", "name": "table", "in": "path", "required": true},
                    {"type": "integer", "name": "recordID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/estadisticas": {
            "get": {
                "tags": ["estadisticas"],
                "summary": "Estadísticas agregadas",
                "parameters": [
                    {"type": "string", "name": "fecha_desde", "in": "query"},
                    {"type": "string", "name": "fecha_hasta", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/estadisticas/barrios": {
            "get": {
                "tags": ["estadisticas"],
                "summary": "Barrios agrupados por nombre normalizado",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/dashboard": {
            "get": {
                "tags": ["estadisticas"],
                "summary": "Resumen del día",
                "responses": {"200": {"description": "OK"}}
            }
        }
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
	Title:            "Registro veterinario municipal",
	Description:      "Atenciones, tutores, turnos, auditoría y estadísticas.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
