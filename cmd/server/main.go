package main

import (
	"github.com/lqnhat/chatcore/internal/app"
	"github.com/lqnhat/chatcore/internal/server"
)

func main() {
	app.Invoke(server.StartServer).Run()
}
