// Package docs registers the OpenAPI document served at /api/swagger.
package docs

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
        "/posts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "List the feed",
                "parameters": [
                    {"type": "integer", "description": "Page size (1-100, default 20)", "name": "limit", "in": "query"},
                    {"type": "string", "description": "Opaque cursor from a previous page", "name": "pageToken", "in": "query"},
                    {"type": "boolean", "description": "Only authors the caller follows", "name": "following", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.FeedPage"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Create a post",
                "parameters": [
                    {"description": "Post", "name": "request", "in": "body", "required": true, "schema": {"type": "object", "properties": {"content": {"type": "string"}, "mediaUrls": {"type": "array", "items": {"type": "string"}}}}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object", "properties": {"post": {"$ref": "#/definitions/models.Post"}}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/posts/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Get a post",
                "parameters": [{"type": "string", "description": "Post ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"post": {"$ref": "#/definitions/models.Post"}}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Delete a post",
                "parameters": [{"type": "string", "description": "Post ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/posts/{id}/comments": {
            "get": {
                "produces": ["application/json"],
                "tags": ["comments"],
                "summary": "List comments on a post",
                "parameters": [
                    {"type": "string", "description": "Post ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Page size (1-100, default 20)", "name": "limit", "in": "query"},
                    {"type": "string", "description": "Opaque cursor from a previous page", "name": "pageToken", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.CommentPage"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["comments"],
                "summary": "Comment on a post",
                "parameters": [
                    {"type": "string", "description": "Post ID", "name": "id", "in": "path", "required": true},
                    {"description": "Comment", "name": "request", "in": "body", "required": true, "schema": {"type": "object", "properties": {"content": {"type": "string"}}}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object", "properties": {"comment": {"$ref": "#/definitions/models.Comment"}}}}
                }
            }
        },
        "/likes": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["engagement"],
                "summary": "Toggle a like on a post or comment",
                "parameters": [
                    {"description": "Exactly one target", "name": "request", "in": "body", "required": true, "schema": {"type": "object", "properties": {"postId": {"type": "string"}, "commentId": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"liked": {"type": "boolean"}, "likesCount": {"type": "integer"}}}}
                }
            }
        },
        "/media": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["media"],
                "summary": "Upload media",
                "parameters": [
                    {"type": "file", "description": "Image or video", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "post, avatar or banner (default post)", "name": "kind", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/service.MediaUpload"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get a user profile",
                "parameters": [{"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"user": {"$ref": "#/definitions/models.User"}}}}
                }
            }
        },
        "/users/{id}/follow": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Follow or unfollow a user",
                "parameters": [{"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.FollowResult"}}
                }
            }
        }
    },
    "definitions": {
        "models.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "code": {"type": "string"}}
        },
        "models.PublicUser": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "name": {"type": "string"}, "username": {"type": "string"}, "image": {"type": "string"}, "badge": {"type": "string"}}
        },
        "models.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"}, "name": {"type": "string"}, "username": {"type": "string"}, "bio": {"type": "string"},
                "image": {"type": "string"}, "banner_image": {"type": "string"}, "badge": {"type": "string"},
                "followers_count": {"type": "integer"}, "following_count": {"type": "integer"}, "is_following": {"type": "boolean"}
            }
        },
        "models.Post": {
            "type": "object",
            "properties": {
                "id": {"type": "string"}, "user_id": {"type": "string"}, "user": {"$ref": "#/definitions/models.PublicUser"},
                "content": {"type": "string"}, "media_url": {"type": "array", "items": {"type": "string"}},
                "likes_count": {"type": "integer"}, "comments_count": {"type": "integer"}, "views_count": {"type": "integer"},
                "reposts_count": {"type": "integer"}, "bookmarks_count": {"type": "integer"},
                "liked_by_viewer": {"type": "boolean"}, "created_at": {"type": "string"}
            }
        },
        "models.Comment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"}, "post_id": {"type": "string"}, "user": {"$ref": "#/definitions/models.PublicUser"},
                "content": {"type": "string"}, "edited": {"type": "boolean"}, "edited_at": {"type": "string"},
                "likes_count": {"type": "integer"}, "created_at": {"type": "string"}
            }
        },
        "service.FeedPage": {
            "type": "object",
            "properties": {"posts": {"type": "array", "items": {"$ref": "#/definitions/models.Post"}}, "nextPageToken": {"type": "string"}}
        },
        "service.CommentPage": {
            "type": "object",
            "properties": {"comments": {"type": "array", "items": {"$ref": "#/definitions/models.Comment"}}, "nextPageToken": {"type": "string"}}
        },
        "service.FollowResult": {
            "type": "object",
            "properties": {"isFollowing": {"type": "boolean"}, "followersCount": {"type": "integer"}, "followingCount": {"type": "integer"}}
        },
        "service.MediaUpload": {
            "type": "object",
            "properties": {"url": {"type": "string"}, "kind": {"type": "string"}, "mime": {"type": "string"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Pulse API",
	Description:      "Social feed API with posts, comments, likes, follows and a live update stream",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
