// Package docs holds the OpenAPI document served under /swagger.
// Regenerate it from the handler annotations with:
//
//	swag init -g cmd/server/main.go --v3.1
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.1.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "servers": [
        {
            "url": "{{.BasePath}}"
        }
    ],
    "paths": {
        "/clients": {
            "get": {
                "operationId": "listClients",
                "summary": "List clients",
                "description": "Returns every client with its resolved address",
                "tags": ["clients"],
                "responses": {
                    "200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ClientListResponse"}}}},
                    "500": {"$ref": "#/components/responses/Error"}
                }
            },
            "post": {
                "operationId": "createClient",
                "summary": "Create a client",
                "description": "Creates a client after resolving its postal code",
                "tags": ["clients"],
                "requestBody": {
                    "required": true,
                    "content": {"application/json": {"schema": {"$ref": "#/components/schemas/CreateClientRequest"}}}
                },
                "responses": {
                    "201": {"description": "Created", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ClientEnvelope"}}}},
                    "400": {"$ref": "#/components/responses/Error"},
                    "503": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/clients/{id}": {
            "parameters": [
                {"name": "id", "in": "path", "required": true, "description": "Client ID", "schema": {"type": "string", "format": "uuid"}}
            ],
            "get": {
                "operationId": "getClient",
                "summary": "Get a client",
                "tags": ["clients"],
                "responses": {
                    "200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ClientEnvelope"}}}},
                    "400": {"$ref": "#/components/responses/Error"},
                    "404": {"$ref": "#/components/responses/Error"}
                }
            },
            "put": {
                "operationId": "updateClient",
                "summary": "Update a client",
                "description": "Updates the given fields. A new postal code is resolved before saving.",
                "tags": ["clients"],
                "requestBody": {
                    "required": true,
                    "content": {"application/json": {"schema": {"$ref": "#/components/schemas/UpdateClientRequest"}}}
                },
                "responses": {
                    "200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ClientEnvelope"}}}},
                    "400": {"$ref": "#/components/responses/Error"},
                    "404": {"$ref": "#/components/responses/Error"},
                    "503": {"$ref": "#/components/responses/Error"}
                }
            },
            "delete": {
                "operationId": "deleteClient",
                "summary": "Delete a client",
                "tags": ["clients"],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/addresses/{cep}": {
            "parameters": [{"$ref": "#/components/parameters/PostalCode"}],
            "get": {
                "operationId": "resolveAddress",
                "summary": "Resolve a postal code",
                "description": "Returns the address for a CEP, from cache or the lookup service",
                "tags": ["addresses"],
                "responses": {
                    "200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/AddressEnvelope"}}}},
                    "400": {"$ref": "#/components/responses/Error"},
                    "404": {"$ref": "#/components/responses/Error"},
                    "503": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/admin/addresses/{cep}": {
            "parameters": [{"$ref": "#/components/parameters/PostalCode"}],
            "get": {
                "operationId": "peekAddressCache",
                "summary": "Inspect a cache entry",
                "description": "Reads the cache only; never calls the lookup service",
                "tags": ["admin"],
                "responses": {
                    "200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/CacheEntryEnvelope"}}}},
                    "400": {"$ref": "#/components/responses/Error"}
                }
            },
            "delete": {
                "operationId": "invalidateAddress",
                "summary": "Drop a cache entry",
                "tags": ["admin"],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/admin/addresses/{cep}/refresh": {
            "parameters": [{"$ref": "#/components/parameters/PostalCode"}],
            "post": {
                "operationId": "refreshAddress",
                "summary": "Refetch a cache entry",
                "description": "Drops the cached address and resolves it again from the lookup service",
                "tags": ["admin"],
                "responses": {
                    "200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/AddressEnvelope"}}}},
                    "400": {"$ref": "#/components/responses/Error"},
                    "404": {"$ref": "#/components/responses/Error"},
                    "503": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/health": {
            "get": {
                "operationId": "health",
                "summary": "Health check",
                "description": "Reports liveness and database reachability",
                "tags": ["system"],
                "responses": {
                    "200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/HealthEnvelope"}}}},
                    "503": {"description": "Degraded", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/HealthEnvelope"}}}}
                }
            }
        }
    },
    "components": {
        "parameters": {
            "PostalCode": {"name": "cep", "in": "path", "required": true, "description": "Postal code, formatted or digits only", "schema": {"type": "string", "example": "01001-000"}}
        },
        "responses": {
            "Error": {"description": "Error", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}}
        },
        "schemas": {
            "Address": {
                "type": "object",
                "properties": {
                    "postal_code": {"type": "string", "example": "01001000"},
                    "street": {"type": "string", "example": "Praça da Sé"},
                    "complement": {"type": "string"},
                    "neighborhood": {"type": "string", "example": "Sé"},
                    "city": {"type": "string", "example": "São Paulo"},
                    "state": {"type": "string", "example": "SP"},
                    "ibge_code": {"type": "string", "example": "3550308"}
                }
            },
            "Client": {
                "type": "object",
                "properties": {
                    "id": {"type": "string", "format": "uuid"},
                    "name": {"type": "string"},
                    "postal_code": {"type": "string", "example": "01001-000"},
                    "number": {"type": "string"},
                    "complement": {"type": "string"},
                    "email": {"type": "string", "format": "email"},
                    "phone": {"type": "string"},
                    "address": {"oneOf": [{"$ref": "#/components/schemas/Address"}, {"type": "null"}]},
                    "full_address": {"type": "string"},
                    "created_at": {"type": "string", "format": "date-time"},
                    "updated_at": {"type": "string", "format": "date-time"}
                }
            },
            "CreateClientRequest": {
                "type": "object",
                "required": ["name", "postal_code"],
                "properties": {
                    "name": {"type": "string", "maxLength": 200},
                    "postal_code": {"type": "string", "maxLength": 20},
                    "number": {"type": "string", "maxLength": 20},
                    "complement": {"type": "string", "maxLength": 100},
                    "email": {"type": "string", "format": "email", "maxLength": 200},
                    "phone": {"type": "string", "maxLength": 50}
                }
            },
            "UpdateClientRequest": {
                "type": "object",
                "properties": {
                    "name": {"type": "string", "maxLength": 200},
                    "postal_code": {"type": "string", "maxLength": 20},
                    "number": {"type": "string", "maxLength": 20},
                    "complement": {"type": "string", "maxLength": 100},
                    "email": {"type": "string", "maxLength": 200},
                    "phone": {"type": "string", "maxLength": 50}
                }
            },
            "CacheEntry": {
                "type": "object",
                "properties": {
                    "postal_code": {"type": "string", "example": "01001-000"},
                    "cached": {"type": "boolean"},
                    "address": {"$ref": "#/components/schemas/Address"}
                }
            },
            "Health": {
                "type": "object",
                "properties": {
                    "status": {"type": "string", "example": "ok"},
                    "name": {"type": "string"},
                    "version": {"type": "string"},
                    "go_version": {"type": "string"},
                    "uptime": {"type": "string"},
                    "checks": {"type": "object", "additionalProperties": {"type": "string"}}
                }
            },
            "ErrorInfo": {
                "type": "object",
                "properties": {
                    "code": {"type": "string", "example": "POSTAL_CODE_NOT_FOUND"},
                    "message": {"type": "string"},
                    "request_id": {"type": "string"},
                    "details": {
                        "type": "array",
                        "items": {
                            "type": "object",
                            "properties": {"field": {"type": "string"}, "message": {"type": "string"}}
                        }
                    }
                }
            },
            "ErrorResponse": {
                "type": "object",
                "properties": {
                    "success": {"type": "boolean", "example": false},
                    "error": {"$ref": "#/components/schemas/ErrorInfo"}
                }
            },
            "ClientEnvelope": {
                "type": "object",
                "properties": {"success": {"type": "boolean"}, "data": {"$ref": "#/components/schemas/Client"}}
            },
            "ClientListResponse": {
                "type": "object",
                "properties": {"success": {"type": "boolean"}, "data": {"type": "array", "items": {"$ref": "#/components/schemas/Client"}}}
            },
            "AddressEnvelope": {
                "type": "object",
                "properties": {"success": {"type": "boolean"}, "data": {"$ref": "#/components/schemas/Address"}}
            },
            "CacheEntryEnvelope": {
                "type": "object",
                "properties": {"success": {"type": "boolean"}, "data": {"$ref": "#/components/schemas/CacheEntry"}}
            },
            "HealthEnvelope": {
                "type": "object",
                "properties": {"success": {"type": "boolean"}, "data": {"$ref": "#/components/schemas/Health"}}
            }
        }
    },
    "tags": [
        {"name": "clients", "description": "Client records"},
        {"name": "addresses", "description": "Postal code resolution"},
        {"name": "admin", "description": "Address cache administration"},
        {"name": "system", "description": "Service health"}
    ]
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Clientes API",
	Description:      "Client records enriched with CEP address data",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
