// Command functions serves ProcessDocument and QueryLLM locally through the
// Functions Framework. Set FUNCTION_TARGET to serve a single function at /.
package main

import (
	"log"
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"

	_ "github.com/GoSim-25-26J-441/hio-docpipe"
)

func main() {
	port := "8080"
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = envPort
	}
	if err := funcframework.Start(port); err != nil {
		log.Fatalf("funcframework.Start: %v", err)
	}
}
