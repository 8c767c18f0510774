package main

//go:generate swag init -g cmd/server/main.go -o docs

// @title           Fund Holdings API
// @version         1.0.0
// @description     ETF fund holdings ingestion and retrieval.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
