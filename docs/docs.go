// Package docs holds the OpenAPI document served at /swagger. Regenerate with
// swag init -g cmd/app/main.go after changing handler annotations.
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
		"/health": {
			"get": {
				"tags": [
					"Health"
				],
				"summary": "Health check",
				"produces": [
					"application/json"
				],
				"parameters": [],
				"responses": {
					"200": {
						"description": "OK"
					},
					"503": {
						"description": "Service Unavailable",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					}
				}
			}
		},
		"/v1/bookings": {
			"post": {
				"tags": [
					"Booking"
				],
				"summary": "Create a new booking",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "request",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.CreateBookingRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created"
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"422": {
						"description": "Unprocessable Entity",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			},
			"get": {
				"tags": [
					"Booking"
				],
				"summary": "Get all bookings",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Page number",
						"name": "page",
						"in": "query",
						"required": false
					},
					{
						"type": "integer",
						"description": "Page size",
						"name": "limit",
						"in": "query",
						"required": false
					},
					{
						"type": "string",
						"description": "Sort column",
						"name": "sort_by",
						"in": "query",
						"required": false
					},
					{
						"type": "string",
						"description": "ASC or DESC",
						"name": "sort_dir",
						"in": "query",
						"required": false
					},
					{
						"type": "string",
						"description": "YYYY-MM-DD",
						"name": "session_date",
						"in": "query",
						"required": false
					},
					{
						"type": "string",
						"description": "Customer email",
						"name": "customer_email",
						"in": "query",
						"required": false
					},
					{
						"type": "string",
						"description": "sauna, ice_bath or combined",
						"name": "service_type",
						"in": "query",
						"required": false
					},
					{
						"type": "string",
						"description": "Booking status",
						"name": "booking_status",
						"in": "query",
						"required": false
					},
					{
						"type": "string",
						"description": "Payment status",
						"name": "payment_status",
						"in": "query",
						"required": false
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"422": {
						"description": "Unprocessable Entity",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/v1/bookings/{id}": {
			"get": {
				"tags": [
					"Booking"
				],
				"summary": "Get a booking by ID",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Booking ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"patch": {
				"tags": [
					"Booking"
				],
				"summary": "Edit a booking",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Booking ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"in": "body",
						"name": "request",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.UpdateBookingRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"422": {
						"description": "Unprocessable Entity",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"delete": {
				"tags": [
					"Booking"
				],
				"summary": "Delete a booking by ID",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Booking ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/v1/bookings/{id}/cancel": {
			"post": {
				"tags": [
					"Booking"
				],
				"summary": "Cancel a booking",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Booking ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/v1/bookings/{id}/checkout": {
			"post": {
				"tags": [
					"Payment"
				],
				"summary": "Start card checkout",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Booking ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"502": {
						"description": "Bad Gateway",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					}
				}
			}
		},
		"/v1/bookings/{id}/verify-payment": {
			"post": {
				"tags": [
					"Payment"
				],
				"summary": "Verify card payment",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Booking ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"502": {
						"description": "Bad Gateway",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					}
				}
			}
		},
		"/v1/bookings/{id}/refund": {
			"post": {
				"tags": [
					"Payment"
				],
				"summary": "Refund a booking",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Booking ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"in": "body",
						"name": "request",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.RefundRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"422": {
						"description": "Unprocessable Entity",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"502": {
						"description": "Bad Gateway",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/v1/slots": {
			"get": {
				"tags": [
					"Slot"
				],
				"summary": "Get session slots",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Page number",
						"name": "page",
						"in": "query",
						"required": false
					},
					{
						"type": "integer",
						"description": "Page size",
						"name": "limit",
						"in": "query",
						"required": false
					},
					{
						"type": "string",
						"description": "Sort column",
						"name": "sort_by",
						"in": "query",
						"required": false
					},
					{
						"type": "string",
						"description": "ASC or DESC",
						"name": "sort_dir",
						"in": "query",
						"required": false
					},
					{
						"type": "string",
						"description": "YYYY-MM-DD",
						"name": "date",
						"in": "query",
						"required": false
					},
					{
						"type": "string",
						"description": "sauna, ice_bath or combined",
						"name": "service_type",
						"in": "query",
						"required": false
					},
					{
						"type": "boolean",
						"description": "Only open slots",
						"name": "available",
						"in": "query",
						"required": false
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"422": {
						"description": "Unprocessable Entity",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/v1/slots/availability": {
			"get": {
				"tags": [
					"Slot"
				],
				"summary": "Get availability for a day",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "YYYY-MM-DD",
						"name": "date",
						"in": "query",
						"required": true
					},
					{
						"type": "string",
						"description": "sauna, ice_bath or combined",
						"name": "service_type",
						"in": "query",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"422": {
						"description": "Unprocessable Entity",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					}
				}
			}
		},
		"/v1/tokens": {
			"post": {
				"tags": [
					"Token"
				],
				"summary": "Grant session tokens",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "request",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.GrantTokensRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"422": {
						"description": "Unprocessable Entity",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/v1/tokens/{email}": {
			"get": {
				"tags": [
					"Token"
				],
				"summary": "Get a customer's session tokens",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Customer email",
						"name": "email",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"422": {
						"description": "Unprocessable Entity",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/v1/payments/webhook": {
			"post": {
				"tags": [
					"Payment"
				],
				"summary": "Payment provider webhook",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Webhook signature",
						"name": "Stripe-Signature",
						"in": "header",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/response.Error"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"response.Error": {
			"type": "object",
			"properties": {
				"error": {
					"type": "string"
				},
				"kind": {
					"type": "string"
				},
				"fields": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			}
		},
		"response.Message": {
			"type": "object",
			"properties": {
				"message": {
					"type": "string"
				}
			}
		},
		"dto.CreateBookingRequest": {
			"type": "object",
			"properties": {
				"customer_name": {
					"type": "string"
				},
				"customer_email": {
					"type": "string"
				},
				"customer_phone": {
					"type": "string"
				},
				"session_date": {
					"type": "string"
				},
				"session_time": {
					"type": "string"
				},
				"service_type": {
					"type": "string"
				},
				"booking_type": {
					"type": "string"
				},
				"guest_count": {
					"type": "integer"
				},
				"duration_minutes": {
					"type": "integer"
				},
				"price_amount": {
					"type": "integer"
				},
				"discount_amount": {
					"type": "integer"
				},
				"payment_method": {
					"type": "string"
				},
				"voucher_code": {
					"type": "string"
				},
				"special_requests": {
					"type": "string"
				}
			},
			"required": [
				"customer_name",
				"customer_email",
				"session_date",
				"session_time",
				"service_type",
				"booking_type",
				"guest_count",
				"payment_method"
			]
		},
		"dto.UpdateBookingRequest": {
			"type": "object",
			"properties": {
				"customer_name": {
					"type": "string"
				},
				"customer_email": {
					"type": "string"
				},
				"customer_phone": {
					"type": "string"
				},
				"session_date": {
					"type": "string"
				},
				"session_time": {
					"type": "string"
				},
				"service_type": {
					"type": "string"
				},
				"booking_type": {
					"type": "string"
				},
				"guest_count": {
					"type": "integer"
				},
				"duration_minutes": {
					"type": "integer"
				},
				"price_amount": {
					"type": "integer"
				},
				"discount_amount": {
					"type": "integer"
				},
				"payment_status": {
					"type": "string"
				},
				"booking_status": {
					"type": "string"
				},
				"special_requests": {
					"type": "string"
				}
			}
		},
		"dto.RefundRequest": {
			"type": "object",
			"properties": {
				"kind": {
					"type": "string",
					"enum": [
						"full",
						"partial"
					]
				}
			},
			"required": [
				"kind"
			]
		},
		"dto.GrantTokensRequest": {
			"type": "object",
			"properties": {
				"customer_email": {
					"type": "string"
				},
				"tokens": {
					"type": "integer"
				},
				"expires_at": {
					"type": "string"
				},
				"notes": {
					"type": "string"
				}
			},
			"required": [
				"customer_email",
				"tokens"
			]
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Wellness Booking API",
	Description:      "Session booking engine for the sauna and ice bath studio.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
