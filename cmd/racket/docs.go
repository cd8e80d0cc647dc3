package main

// General API documentation for swaggo. Regenerate with:
//
//	swag init -g cmd/racket/docs.go -o internal/apidocs --outputTypes go
//
// @title           racket API
// @version         1.0
// @description     HTTP API serving the active model of a racket installation.
//
// @contact.name   racket maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
