package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
)

func main() {
	gin.SetMode(gin.ReleaseMode)
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "msgboard: %v\n", err)
		os.Exit(1)
	}
}
