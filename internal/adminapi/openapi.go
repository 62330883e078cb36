package adminapi

// openAPISpec is a hand-maintained OpenAPI description of the admin
// HTTP surface, served at /openapi.json and browsable via the Swagger
// UI mounted at /docs (see setupDocumentationRoutes).
const openAPISpec = `{
  "openapi": "3.0.3",
  "info": {
    "title": "supervisord admin API",
    "description": "Per-server process lifecycle control and inspection.",
    "version": "1.0.0"
  },
  "paths": {
    "/healthz": {
      "get": { "summary": "Liveness probe", "responses": { "200": { "description": "OK" } } }
    },
    "/servers": {
      "get": { "summary": "List known server ids", "responses": { "200": { "description": "OK" } } }
    },
    "/servers/{id}/state": {
      "get": {
        "summary": "Get a server's coarsened external state",
        "parameters": [ { "name": "id", "in": "path", "required": true, "schema": { "type": "string" } } ],
        "responses": { "200": { "description": "OK" }, "404": { "description": "unknown server" } }
      }
    },
    "/servers/{id}/pid": {
      "get": {
        "summary": "Get a server's managed process id",
        "parameters": [ { "name": "id", "in": "path", "required": true, "schema": { "type": "string" } } ],
        "responses": { "200": { "description": "OK" }, "404": { "description": "unknown server" } }
      }
    },
    "/servers/{id}/load": {
      "post": {
        "summary": "Load or update a server's descriptor",
        "parameters": [ { "name": "id", "in": "path", "required": true, "schema": { "type": "string" } } ],
        "responses": { "200": { "description": "OK" }, "400": { "description": "invalid descriptor" }, "409": { "description": "revision mismatch" } }
      }
    },
    "/servers/{id}/start": {
      "post": {
        "summary": "Start a loaded server",
        "parameters": [ { "name": "id", "in": "path", "required": true, "schema": { "type": "string" } } ],
        "responses": { "200": { "description": "OK" }, "422": { "description": "activation failure" } }
      }
    },
    "/servers/{id}/stop": {
      "post": {
        "summary": "Stop a server",
        "parameters": [ { "name": "id", "in": "path", "required": true, "schema": { "type": "string" } } ],
        "responses": { "200": { "description": "OK" } }
      }
    },
    "/servers/{id}/destroy": {
      "post": {
        "summary": "Destroy a server and release its resources",
        "parameters": [ { "name": "id", "in": "path", "required": true, "schema": { "type": "string" } } ],
        "responses": { "200": { "description": "OK" } }
      }
    },
    "/servers/{id}/files/{name}": {
      "get": {
        "summary": "Tail a server's output file",
        "parameters": [
          { "name": "id", "in": "path", "required": true, "schema": { "type": "string" } },
          { "name": "name", "in": "path", "required": true, "schema": { "type": "string" } }
        ],
        "responses": { "200": { "description": "OK" }, "404": { "description": "file not available" } }
      }
    }
  }
}`
