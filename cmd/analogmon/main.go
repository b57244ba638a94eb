package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/analog.go/pkg/comm/mqtt"
	"github.com/robotalks/analog.go/pkg/msgs"
	"github.com/robotalks/analog.go/pkg/report"
)

var (
	mqttURL = "mqtt://localhost:1883"
)

func init() {
	if val := os.Getenv("ANALOG_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub(report.TopicRoot+"/#", mqtt.Handler(func(topic string, payload []byte) {
		switch {
		case strings.HasSuffix(topic, "/"+report.TopicMeta):
			log.Printf("%s: %s", topic, string(payload))
		case strings.HasSuffix(topic, "/"+report.TopicLink):
			status, err := msgs.DecodeLinkStatus(payload)
			if err != nil {
				log.Printf("%s: bad message: %v", topic, err)
				return
			}
			log.Printf("%s: %s", topic, status.String())
		case strings.HasSuffix(topic, "/"+report.TopicStatus):
			status, err := msgs.DecodeSensorStatus(payload)
			if err != nil {
				log.Printf("%s: bad message: %v", topic, err)
				return
			}
			log.Printf("%s: %s", topic, status.String())
		default:
			log.Printf("%s: %d bytes", topic, len(payload))
		}
	}))

	token := q.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		log.Fatalln(err)
	}
	select {}
}
