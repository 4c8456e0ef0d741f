// Package main Agora Server API
//
//	@title			Agora Server API
//	@version		1.0
//	@description	Social feed API with keyset paginated listings.
//
//	@host		localhost:8080
//	@BasePath	/api/v1
//
//	@tag.name			Feed
//	@tag.description	Posts and comments
//
//	@tag.name			Admin
//	@tag.description	Moderation listings
package main
