// Package swagger 注册 oracle-server 的 OpenAPI 文档，供 /swagger/*any 路由读取。
// 路由与 internal/handler 中的注释保持一致。
package swagger

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
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Check system health",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/encode": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Oracle"],
                "summary": "构造规范消息",
                "parameters": [{"description": "Encode Request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/request.EncodeRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/hash": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Oracle"],
                "summary": "计算消息哈希",
                "parameters": [{"description": "Hash Request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/request.HashRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/verify": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Oracle"],
                "summary": "验证签名",
                "parameters": [{"description": "Verify Request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/request.VerifyRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/attempts": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Attempt"],
                "summary": "验证录制的签名会话",
                "parameters": [{"description": "Attempt Request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/request.AttemptRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/attempts/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Attempt"],
                "summary": "查询尝试结果",
                "parameters": [{"type": "string", "description": "Attempt ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        }
    },
    "definitions": {
        "request.TransferParams": {
            "type": "object",
            "required": ["recipient", "amount", "network", "gasPrice", "gasLimit", "ttl"],
            "properties": {
                "path": {"type": "string", "example": "m/44'/626'/0'/0/0"},
                "recipient": {"type": "string"},
                "amount": {"type": "string", "maxLength": 32},
                "network": {"type": "string", "maxLength": 20},
                "chainId": {"type": "integer", "maximum": 99},
                "gasPrice": {"type": "string", "maxLength": 10},
                "gasLimit": {"type": "string", "maxLength": 20},
                "creationTime": {"type": "integer"},
                "ttl": {"type": "string", "maxLength": 20},
                "nonce": {"type": "string", "maxLength": 32},
                "namespace": {"type": "string", "maxLength": 16},
                "module": {"type": "string", "maxLength": 32},
                "recipient_chainId": {"type": "integer", "maximum": 99}
            }
        },
        "request.EncodeRequest": {
            "type": "object",
            "required": ["variant", "params", "signer_pubkey"],
            "properties": {
                "variant": {"type": "string", "enum": ["transfer", "transfer_create", "transfer_cross_chain"]},
                "params": {"$ref": "#/definitions/request.TransferParams"},
                "signer_pubkey": {"type": "string"}
            }
        },
        "request.HashRequest": {
            "type": "object",
            "required": ["message"],
            "properties": {"message": {"type": "string"}}
        },
        "request.VerifyRequest": {
            "type": "object",
            "required": ["signature", "hash", "public_key"],
            "properties": {
                "signature": {"type": "string"},
                "hash": {"type": "string"},
                "public_key": {"type": "string"}
            }
        },
        "request.AttemptRequest": {
            "type": "object",
            "required": ["mode", "transcript"],
            "properties": {
                "mode": {"type": "string", "enum": ["blob", "hash", "transfer", "legacy_transfer", "address"]},
                "variant": {"type": "string"},
                "path": {"type": "string"},
                "params": {"$ref": "#/definitions/request.TransferParams"},
                "message": {"type": "string"},
                "hash": {"type": "string"},
                "expected_public_key": {"type": "string"},
                "transcript": {"type": "object"}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "msg": {"type": "string"},
                "data": {}
            }
        }
    }
}`

// SwaggerInfo 导出的文档元信息，可在启动时修改 Host 等字段
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Signing Oracle API",
	Description:      "验证 Kadena 硬件签名结果的服务",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
