package rest

import "github.com/xeipuuv/gojsonschema"

// Request body schemas, compiled once at package init. Create bodies
// require every field; patch bodies allow any subset of the mutable
// fields. Unknown keys are rejected across the board.

const createUserSchema = `{
	"type": "object",
	"additionalProperties": false,
	"required": ["firstName", "lastName", "email"],
	"properties": {
		"firstName": {"type": "string", "minLength": 1},
		"lastName": {"type": "string", "minLength": 1},
		"email": {"type": "string", "minLength": 1}
	}
}`

const patchUserSchema = `{
	"type": "object",
	"additionalProperties": false,
	"minProperties": 1,
	"properties": {
		"firstName": {"type": "string"},
		"lastName": {"type": "string"},
		"email": {"type": "string"}
	}
}`

const createProfileSchema = `{
	"type": "object",
	"additionalProperties": false,
	"required": ["avatar", "sex", "birthday", "country", "street", "city", "memberTypeId", "userId"],
	"properties": {
		"avatar": {"type": "string"},
		"sex": {"type": "string"},
		"birthday": {"type": "integer"},
		"country": {"type": "string"},
		"street": {"type": "string"},
		"city": {"type": "string"},
		"memberTypeId": {"type": "string", "minLength": 1},
		"userId": {"type": "string", "minLength": 1}
	}
}`

const patchProfileSchema = `{
	"type": "object",
	"additionalProperties": false,
	"minProperties": 1,
	"properties": {
		"avatar": {"type": "string"},
		"sex": {"type": "string"},
		"birthday": {"type": "integer"},
		"country": {"type": "string"},
		"street": {"type": "string"},
		"city": {"type": "string"},
		"memberTypeId": {"type": "string", "minLength": 1}
	}
}`

const createPostSchema = `{
	"type": "object",
	"additionalProperties": false,
	"required": ["title", "content", "userId"],
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"content": {"type": "string"},
		"userId": {"type": "string", "minLength": 1}
	}
}`

const patchPostSchema = `{
	"type": "object",
	"additionalProperties": false,
	"minProperties": 1,
	"properties": {
		"title": {"type": "string"},
		"content": {"type": "string"}
	}
}`

const patchMemberTypeSchema = `{
	"type": "object",
	"additionalProperties": false,
	"minProperties": 1,
	"properties": {
		"discount": {"type": "number"},
		"monthPostsLimit": {"type": "integer"}
	}
}`

const subscribeSchema = `{
	"type": "object",
	"additionalProperties": false,
	"required": ["userId"],
	"properties": {
		"userId": {"type": "string", "minLength": 1}
	}
}`

type bodySchemas struct {
	createUser      *gojsonschema.Schema
	patchUser       *gojsonschema.Schema
	createProfile   *gojsonschema.Schema
	patchProfile    *gojsonschema.Schema
	createPost      *gojsonschema.Schema
	patchPost       *gojsonschema.Schema
	patchMemberType *gojsonschema.Schema
	subscribe       *gojsonschema.Schema
}

func mustSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic("rest: invalid body schema: " + err.Error())
	}
	return schema
}

var schemas = bodySchemas{
	createUser:      mustSchema(createUserSchema),
	patchUser:       mustSchema(patchUserSchema),
	createProfile:   mustSchema(createProfileSchema),
	patchProfile:    mustSchema(patchProfileSchema),
	createPost:      mustSchema(createPostSchema),
	patchPost:       mustSchema(patchPostSchema),
	patchMemberType: mustSchema(patchMemberTypeSchema),
	subscribe:       mustSchema(subscribeSchema),
}
