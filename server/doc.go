// Package server exposes product search and SKU narrowing over HTTP.
//
// Routes:
//
//	GET  /health
//	POST /api/v1/find             text search, entities extracted when omitted
//	POST /api/v1/speech           multipart audio upload, transcribed then searched
//	POST /api/v1/skus/narrow      one SKU narrowing step
//	GET  /api/v1/products/{key}   stored product with its SKUs
package server
