package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "AISHE Survey API",
        "description": "Departmental enrollment and examination count submission for the statutory AISHE survey",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Counts", "description": "Count record submission and review"},
        {"name": "Submissions", "description": "Derived completion status"},
        {"name": "Declarations", "description": "Declaration filing and lock state"},
        {"name": "Dashboard", "description": "Aggregated views"},
        {"name": "Admin", "description": "Privileged oversight and overrides"},
        {"name": "Reports", "description": "Survey export"},
        {"name": "Reference", "description": "Configured reference data"}
    ],
    "paths": {
        "/counts": {
            "get": {
                "tags": ["Counts"],
                "summary": "List submitted count records",
                "parameters": [
                    {"name": "dept_id", "in": "query", "type": "string"},
                    {"name": "academic_year", "in": "query", "type": "string"},
                    {"name": "degree_level", "in": "query", "type": "string", "enum": ["UG", "PG"]},
                    {"name": "year", "in": "query", "type": "string"},
                    {"name": "record_type", "in": "query", "type": "string", "enum": ["ENROLLMENT", "EXAMINATION"]},
                    {"name": "result_type", "in": "query", "type": "string", "enum": ["APPEARED", "PASSED", "ABOVE60"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Counts"],
                "summary": "Submit or update a batch of count records",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitCountsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Saved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Scope locked by declaration", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions/status": {
            "get": {
                "tags": ["Submissions"],
                "summary": "Per-slot completion status for a department scope",
                "parameters": [
                    {"name": "dept_id", "in": "query", "type": "string"},
                    {"name": "academic_year", "in": "query", "type": "string"},
                    {"name": "degree_level", "in": "query", "required": true, "type": "string", "enum": ["UG", "PG"]},
                    {"name": "record_type", "in": "query", "required": true, "type": "string", "enum": ["ENROLLMENT", "EXAMINATION"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/declarations": {
            "post": {
                "tags": ["Declarations"],
                "summary": "File a declaration, locking the scope",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FileDeclarationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Filed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already filed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Submission incomplete", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/declarations/status": {
            "get": {
                "tags": ["Declarations"],
                "summary": "Lock status for a department scope",
                "parameters": [
                    {"name": "dept_id", "in": "query", "type": "string"},
                    {"name": "academic_year", "in": "query", "type": "string"},
                    {"name": "degree_level", "in": "query", "required": true, "type": "string", "enum": ["UG", "PG"]},
                    {"name": "record_type", "in": "query", "required": true, "type": "string", "enum": ["ENROLLMENT", "EXAMINATION"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/gender-totals": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Institution-wide gender totals",
                "parameters": [
                    {"name": "academic_year", "in": "query", "type": "string"},
                    {"name": "degree_level", "in": "query", "type": "string", "enum": ["UG", "PG"]},
                    {"name": "dept_id", "in": "query", "type": "string"},
                    {"name": "record_type", "in": "query", "type": "string", "enum": ["ENROLLMENT", "EXAMINATION"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/departments/{id}/summary": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Per-department summary grouped by year slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "academic_year", "in": "query", "type": "string"},
                    {"name": "degree_level", "in": "query", "type": "string", "enum": ["UG", "PG"]},
                    {"name": "record_type", "in": "query", "type": "string", "enum": ["ENROLLMENT", "EXAMINATION"]},
                    {"name": "group_by", "in": "query", "type": "string", "description": "Comma separated: category,subcategory"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/submissions": {
            "get": {
                "tags": ["Admin"],
                "summary": "Merged submission listing across all departments",
                "parameters": [
                    {"name": "academic_year", "in": "query", "type": "string"},
                    {"name": "degree_level", "in": "query", "type": "string", "enum": ["UG", "PG"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/submissions/{id}/lock": {
            "put": {
                "tags": ["Admin"],
                "summary": "Lock or unlock a declaration",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LockRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/submissions/{id}": {
            "delete": {
                "tags": ["Admin"],
                "summary": "Delete a declaration and its count records",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/metrics": {
            "get": {
                "tags": ["Admin"],
                "summary": "Aggregated runtime counters",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/reports/survey": {
            "get": {
                "tags": ["Reports"],
                "summary": "Institution-wide survey export",
                "parameters": [
                    {"name": "academic_year", "in": "query", "type": "string"},
                    {"name": "degree_level", "in": "query", "type": "string", "enum": ["UG", "PG"]},
                    {"name": "record_type", "in": "query", "type": "string", "enum": ["ENROLLMENT", "EXAMINATION"]},
                    {"name": "format", "in": "query", "type": "string", "enum": ["json", "csv"]}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/reference/departments": {
            "get": {
                "tags": ["Reference"],
                "summary": "List active departments",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reference/categories": {
            "get": {
                "tags": ["Reference"],
                "summary": "List categories",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reference/subcategories": {
            "get": {
                "tags": ["Reference"],
                "summary": "List subcategories",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reference/genders": {
            "get": {
                "tags": ["Reference"],
                "summary": "List gender options",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CountCellInput": {
            "type": "object",
            "properties": {
                "academic_year": {"type": "string"},
                "dept_id": {"type": "string"},
                "degree_level": {"type": "string", "enum": ["UG", "PG"]},
                "year": {"type": "string"},
                "record_type": {"type": "string", "enum": ["ENROLLMENT", "EXAMINATION"]},
                "result_type": {"type": "string", "enum": ["APPEARED", "PASSED", "ABOVE60"]},
                "category_id": {"type": "string"},
                "subcategory_id": {"type": "string"},
                "gender_id": {"type": "string"},
                "count": {"type": "integer", "minimum": 0}
            },
            "required": ["academic_year", "dept_id", "degree_level", "year", "record_type", "category_id", "subcategory_id", "gender_id"]
        },
        "SubmitCountsRequest": {
            "type": "object",
            "properties": {
                "records": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/CountCellInput"}
                }
            },
            "required": ["records"]
        },
        "FileDeclarationRequest": {
            "type": "object",
            "properties": {
                "dept_id": {"type": "string"},
                "academic_year": {"type": "string"},
                "degree_level": {"type": "string", "enum": ["UG", "PG"]},
                "record_type": {"type": "string", "enum": ["ENROLLMENT", "EXAMINATION"]},
                "submitted_by": {"type": "string"},
                "hod_name": {"type": "string"}
            },
            "required": ["dept_id", "degree_level", "record_type"]
        },
        "LockRequest": {
            "type": "object",
            "properties": {
                "locked": {"type": "boolean"}
            },
            "required": ["locked"]
        },
        "GenderTotals": {
            "type": "object",
            "properties": {
                "male_count": {"type": "integer"},
                "female_count": {"type": "integer"},
                "transgender_count": {"type": "integer"}
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
