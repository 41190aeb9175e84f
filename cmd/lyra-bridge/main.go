package main

import (
	"flag"

	"github.com/Artiqlate/lyra/bridge"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	port := flag.Int("port", 0, "Override listen port")
	flag.Parse()

	config, configErr := bridge.LoadConfig(*configPath)
	if configErr != nil {
		logrus.Fatalf("Config error: %v", configErr)
	}
	if *port != 0 {
		config.Port = *port
	}

	serv, servErr := bridge.NewServerModule(config)
	if servErr != nil {
		logrus.Fatalf("Server error: %v", servErr)
	}
	serv.Run()
}
