package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academic Progression API",
        "description": "GPA ledger, academic warnings, enrollment admission control and course recommendations",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Students", "description": "Student records, academic summary and recommendations"},
        {"name": "Courses", "description": "Course catalog, prerequisites and division offerings"},
        {"name": "Enrollments", "description": "Admission control and enrollment lifecycle"},
        {"name": "Enrollment Periods", "description": "Enrollment windows"},
        {"name": "Warnings", "description": "Academic warning lifecycle"},
        {"name": "System", "description": "Runtime counters"}
    ],
    "paths": {
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "divisionId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["active", "inactive"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Register student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Division not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student detail",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/gpa": {
            "put": {
                "tags": ["Students"],
                "summary": "Record the GPA of a finalized semester",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateGPARequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Semester not finalized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/academic-summary": {
            "get": {
                "tags": ["Students"],
                "summary": "Academic summary of a student",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/students/{id}/recommendations": {
            "get": {
                "tags": ["Students"],
                "summary": "Course recommendations for a student",
                "description": "Outside an enrollment period the response carries enrollment_open=false and a notice.",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/students/{id}/warnings/evaluate": {
            "post": {
                "tags": ["Warnings"],
                "summary": "Re-evaluate one student's warnings",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "departmentId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["Available", "Unavailable"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCourseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Duplicate code", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get course with prerequisites",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/courses/{id}/prerequisites": {
            "post": {
                "tags": ["Courses"],
                "summary": "Add a prerequisite to a course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddPrerequisiteRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/courses/{id}/divisions": {
            "post": {
                "tags": ["Courses"],
                "summary": "Offer a course to a division",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignDivisionRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List enrollments",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "courseId", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["InProgress", "Completed", "Failed", "Cancelled"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student in a course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}
                ],
                "responses": {
                    "201": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Rejected by an admission gate", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/{id}/cancel": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Cancel an in-progress enrollment",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Invalid transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/{id}": {
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Remove an enrollment record",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/enrollment-periods": {
            "get": {
                "tags": ["Enrollment Periods"],
                "summary": "List enrollment periods",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Enrollment Periods"],
                "summary": "Open an enrollment period",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePeriodRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Overlaps an existing period", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollment-periods/current": {
            "get": {
                "tags": ["Enrollment Periods"],
                "summary": "Get the enrollment period open now",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/warnings": {
            "get": {
                "tags": ["Warnings"],
                "summary": "List warnings",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "type", "in": "query", "type": "string", "enum": ["low_gpa", "failing_courses", "dismissal_risk", "credit_shortfall", "probation", "administrative"]},
                    {"name": "status", "in": "query", "type": "string", "enum": ["Active", "Resolved", "Superseded"]},
                    {"name": "minLevel", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Warnings"],
                "summary": "Issue a probation or administrative warning",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/IssueWarningRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/warnings/{id}/resolve": {
            "post": {
                "tags": ["Warnings"],
                "summary": "Resolve an active warning",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResolveWarningRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Warning is not active", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/warnings/evaluate-all": {
            "post": {
                "tags": ["Warnings"],
                "summary": "Queue a warning sweep over every active student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/EvaluateAllRequest"}}
                ],
                "responses": {"202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/warnings/export": {
            "get": {
                "tags": ["Warnings"],
                "summary": "Export active warnings",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {"200": {"description": "Report file", "schema": {"type": "file"}}}
            }
        },
        "/system/metrics": {
            "get": {
                "tags": ["System"],
                "summary": "Runtime counters",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "CreateStudentRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "division_id": {"type": "string"},
                "current_semester": {"type": "integer", "minimum": 1},
                "credits_completed": {"type": "integer", "minimum": 0}
            },
            "required": ["name", "division_id", "current_semester"]
        },
        "UpdateGPARequest": {
            "type": "object",
            "properties": {
                "semester": {"type": "integer", "minimum": 1, "maximum": 8},
                "gpa": {"type": "number", "minimum": 0, "maximum": 4}
            },
            "required": ["semester"]
        },
        "CreateCourseRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "code": {"type": "string"},
                "description": {"type": "string"},
                "credits": {"type": "integer", "minimum": 1},
                "typical_semester": {"type": "integer", "minimum": 1},
                "max_seats": {"type": "integer", "minimum": 1},
                "status": {"type": "string", "enum": ["Available", "Unavailable"]},
                "department_id": {"type": "string"}
            },
            "required": ["name", "code", "credits", "typical_semester", "max_seats", "department_id"]
        },
        "AddPrerequisiteRequest": {
            "type": "object",
            "properties": {"prerequisite_course_id": {"type": "string"}},
            "required": ["prerequisite_course_id"]
        },
        "AssignDivisionRequest": {
            "type": "object",
            "properties": {
                "division_id": {"type": "string"},
                "is_mandatory": {"type": "boolean"}
            },
            "required": ["division_id"]
        },
        "EnrollRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "course_id": {"type": "string"}
            },
            "required": ["student_id", "course_id"]
        },
        "CreatePeriodRequest": {
            "type": "object",
            "properties": {
                "semester_label": {"type": "string"},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"}
            },
            "required": ["semester_label", "start_date", "end_date"]
        },
        "IssueWarningRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "warning_type": {"type": "string", "enum": ["probation", "administrative"]},
                "warning_level": {"type": "integer", "minimum": 1, "maximum": 4},
                "description": {"type": "string"},
                "action_required": {"type": "string"},
                "notes": {"type": "string"}
            },
            "required": ["student_id", "warning_type", "warning_level", "description"]
        },
        "ResolveWarningRequest": {
            "type": "object",
            "properties": {"notes": {"type": "string"}},
            "required": ["notes"]
        },
        "EvaluateAllRequest": {
            "type": "object",
            "properties": {"semester_label": {"type": "string"}}
        },
        "Rejection": {
            "type": "object",
            "properties": {
                "reason": {"type": "string", "enum": ["period_closed", "already_enrolled", "already_completed", "credit_limit", "course_unavailable", "not_offered_to_division", "prerequisites_missing", "course_full", "invalid_transition"]},
                "message": {"type": "string"},
                "missing": {"type": "array", "items": {"type": "string"}}
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
                "status": {"type": "integer"},
                "details": {"$ref": "#/definitions/Rejection"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
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
