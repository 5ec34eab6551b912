// Package swagger holds the OpenAPI document for the reel API, kept in sync
// with the annotations in api/reels by hand.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/download/{job_id}": {
            "get": {
                "produces": [
                    "application/octet-stream"
                ],
                "tags": [
                    "reels"
                ],
                "summary": "Download a finished reel",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Job ID",
                        "name": "job_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Job not completed",
                        "schema": {
                            "$ref": "#/definitions/types.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Job or file not found",
                        "schema": {
                            "$ref": "#/definitions/types.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/generate": {
            "post": {
                "description": "Enqueues a generation job and returns its id. Omitted fields take the stock defaults.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reels"
                ],
                "summary": "Start generating a reel",
                "parameters": [
                    {
                        "description": "Generation parameters",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.GenerationRequest"
                        }
                    }
                ],
                "responses": {
                    "202": {
                        "description": "Accepted",
                        "schema": {
                            "$ref": "#/definitions/models.SubmitResponse"
                        }
                    },
                    "400": {
                        "description": "Malformed body",
                        "schema": {
                            "$ref": "#/definitions/types.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Field constraint violated",
                        "schema": {
                            "$ref": "#/definitions/types.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/types.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/health": {
            "get": {
                "description": "Reports the service version, which upstream providers are configured and the job store state",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "health"
                ],
                "summary": "Backend health",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/types.HealthResponse"
                        }
                    },
                    "503": {
                        "description": "Job store unreachable",
                        "schema": {
                            "$ref": "#/definitions/types.HealthResponse"
                        }
                    }
                }
            }
        },
        "/api/job/{job_id}": {
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reels"
                ],
                "summary": "Delete a job",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Job ID",
                        "name": "job_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/types.MessageResponse"
                        }
                    },
                    "404": {
                        "description": "Job not found",
                        "schema": {
                            "$ref": "#/definitions/types.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/preview/{job_id}": {
            "get": {
                "tags": [
                    "reels"
                ],
                "summary": "Preview a finished reel",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Job ID",
                        "name": "job_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "404": {
                        "description": "Video not available",
                        "schema": {
                            "$ref": "#/definitions/types.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/status/{job_id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reels"
                ],
                "summary": "Get job status",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Job ID",
                        "name": "job_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.JobSnapshot"
                        }
                    },
                    "404": {
                        "description": "Job not found",
                        "schema": {
                            "$ref": "#/definitions/types.ErrorResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "models.APIAvailability": {
            "type": "object",
            "properties": {
                "elevenlabs": {
                    "type": "boolean"
                },
                "openai": {
                    "type": "boolean"
                },
                "pexels": {
                    "type": "boolean"
                },
                "stability": {
                    "type": "boolean"
                }
            }
        },
        "models.GenerationRequest": {
            "type": "object",
            "required": [
                "language",
                "topic"
            ],
            "properties": {
                "add_subtitles": {
                    "type": "boolean"
                },
                "duration_seconds": {
                    "type": "integer",
                    "maximum": 60,
                    "minimum": 15
                },
                "language": {
                    "type": "string"
                },
                "music": {
                    "type": "string",
                    "enum": [
                        "none",
                        "upbeat",
                        "ambient",
                        "dramatic",
                        "motivational"
                    ]
                },
                "style": {
                    "type": "string",
                    "enum": [
                        "cinematic",
                        "vibrant",
                        "minimal",
                        "dark"
                    ]
                },
                "topic": {
                    "type": "string",
                    "maxLength": 500
                },
                "voice_gender": {
                    "type": "string",
                    "enum": [
                        "male",
                        "female"
                    ]
                }
            }
        },
        "models.JobSnapshot": {
            "type": "object",
            "properties": {
                "created_at": {
                    "type": "string"
                },
                "download_url": {
                    "type": "string"
                },
                "error": {
                    "type": "string"
                },
                "job_id": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "progress": {
                    "type": "integer"
                },
                "script": {
                    "$ref": "#/definitions/models.ScriptArtifact"
                },
                "status": {
                    "type": "string"
                }
            }
        },
        "models.Scene": {
            "type": "object",
            "properties": {
                "duration": {
                    "type": "number"
                },
                "order": {
                    "type": "integer"
                },
                "text": {
                    "type": "string"
                },
                "transition": {
                    "type": "string"
                },
                "visual_prompt": {
                    "type": "string"
                }
            }
        },
        "models.ScriptArtifact": {
            "type": "object",
            "properties": {
                "call_to_action": {
                    "type": "string"
                },
                "hashtags": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "hook": {
                    "type": "string"
                },
                "scenes": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.Scene"
                    }
                },
                "title": {
                    "type": "string"
                },
                "total_duration": {
                    "type": "number"
                }
            }
        },
        "models.SubmitResponse": {
            "type": "object",
            "properties": {
                "estimated_time_seconds": {
                    "type": "integer"
                },
                "job_id": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "detail": {
                    "type": "string"
                },
                "details": {},
                "status": {
                    "type": "string"
                }
            }
        },
        "types.HealthResponse": {
            "type": "object",
            "properties": {
                "apis": {
                    "$ref": "#/definitions/models.APIAvailability"
                },
                "database": {
                    "type": "object",
                    "additionalProperties": true
                },
                "status": {
                    "type": "string"
                },
                "version": {
                    "type": "string"
                }
            }
        },
        "types.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {
                    "type": "string"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8000",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Reel Generator API",
	Description:      "Simulated backend for asynchronous short-video generation jobs",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
