package event

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"chat-service/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

type ChannelData struct {
	Action string
	Data   []byte
	Out    OutData
}
type OutData struct {
	Send bool
	Log  bool
}

type SubscribeListener struct {
	Queue   string
	Channel chan ChannelData
}

type LogData struct {
	Time    int64  `json:"time"`
	Service string `json:"service"`
	Action  string `json:"action"`
	Data    string `json:"data"`
}

const ActionHeader string = "x-action"
const InLogFile string = "log/in.log"
const OutLogFile string = "log/out.log"

// Broker publishes domain events to RabbitMQ and consumes peer-service
// queues. Every event carries its action in the x-action header; traffic is
// mirrored to append-only log files so a queue can be replayed after an
// outage (EVENT_MODE=IN*/OUT).
type Broker struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queues    map[string]amqp.Queue
	listeners map[string]chan ChannelData

	inLog  *os.File
	outLog *os.File
}

func Connect(queues []string) *Broker {
	conn, err := amqp.Dial(fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		config.Config("RABBITMQ_USER"),
		config.Config("RABBITMQ_PASSWORD"),
		config.Config("RABBITMQ_HOST"),
		config.Config("RABBITMQ_PORT"),
	))
	if err != nil {
		panic("failed to connect to RabbitMQ")
	}
	log.Printf("connection opened to RabbitMQ server")

	channel, err := conn.Channel()
	if err != nil {
		panic("failed to open a RabbitMQ channel")
	}
	log.Printf("opened a RabbitMQ channel")

	b := &Broker{
		conn:      conn,
		channel:   channel,
		queues:    make(map[string]amqp.Queue),
		listeners: make(map[string]chan ChannelData),
	}

	for _, name := range queues {
		queue, err := channel.QueueDeclare(
			name,  // name
			false, // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			panic("failed to declare a RabbitMQ queue")
		}

		b.queues[name] = queue
		log.Printf("success declare a RabbitMQ queue: %s", name)
	}

	if err := os.MkdirAll(filepath.Dir(InLogFile), 0o755); err != nil {
		panic(err)
	}
	b.inLog, err = os.OpenFile(InLogFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		panic(err)
	}
	b.outLog, err = os.OpenFile(OutLogFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		panic(err)
	}

	return b
}

func (b *Broker) Subscribe(listeners []SubscribeListener) {
	for _, listener := range listeners {
		b.listeners[listener.Queue] = listener.Channel

		msgs, err := b.channel.Consume(
			listener.Queue, // queue
			"",             // consumer
			false,          // auto-ack
			false,          // exclusive
			false,          // no-local
			false,          // no-wait
			nil,            // args
		)
		if err != nil {
			panic("failed to register a consumer")
		}
		log.Printf("success subscribe to RabbitMQ [%s] queue", listener.Queue)

		go func(listener SubscribeListener) {
			for msg := range msgs {
				action, _ := msg.Headers[ActionHeader].(string)

				if config.Config("EVENT_MODE") != "DISABLE" {
					b.logIn(LogData{
						Time:    time.Now().UnixMicro(),
						Service: listener.Queue,
						Action:  action,
						Data:    string(msg.Body[:]),
					})
				}

				msg.Ack(false)

				listener.Channel <- ChannelData{
					Action: action,
					Data:   msg.Body,
					Out: OutData{
						Send: true,
						Log:  true,
					},
				}
			}
		}(listener)
	}
}

func (b *Broker) Emit(service string, action string, data []byte, logged bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := b.channel.PublishWithContext(
		ctx,
		"",      // exchange
		service, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Headers: amqp.Table{
				ActionHeader: action,
			},
			Body: data,
		},
	)
	if err != nil {
		return err
	}

	if logged && config.Config("EVENT_MODE") != "DISABLE" {
		b.logOut(LogData{
			Time:    time.Now().UnixMicro(),
			Service: service,
			Action:  action,
			Data:    string(data[:]),
		})
	}
	return nil
}

func (b *Broker) logIn(data LogData) {
	eventJson, _ := json.Marshal(data)
	if _, err := b.inLog.WriteString(string(eventJson) + "\n"); err != nil {
		panic(err)
	}
}

func (b *Broker) logOut(data LogData) {
	eventJson, _ := json.Marshal(data)
	if _, err := b.outLog.WriteString(string(eventJson) + "\n"); err != nil {
		panic(err)
	}
}

// Replay re-drives logged traffic depending on EVENT_MODE: IN* pushes the
// inbound log back through the registered listeners, OUT republishes the
// outbound log.
func (b *Broker) Replay() {
	switch config.Config("EVENT_MODE") {
	case "IN_SEND_LOG":
		b.replayIn(OutData{
			Send: true,
			Log:  true,
		})
	case "IN_SEND":
		b.replayIn(OutData{
			Send: true,
			Log:  false,
		})
	case "IN":
		b.replayIn(OutData{
			Send: false,
			Log:  false,
		})
	case "OUT":
		b.replayOut()
	}
}

func (b *Broker) replayIn(out OutData) {
	inLog, err := os.Open(InLogFile)
	if err != nil {
		log.Fatalf("failed opening file: %s", err)
	}
	scanner := bufio.NewScanner(inLog)
	for scanner.Scan() {
		data := LogData{}
		json.Unmarshal([]byte(scanner.Text()), &data)
		b.listeners[data.Service] <- ChannelData{
			Action: data.Action,
			Data:   []byte(data.Data),
			Out:    out,
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatal(err)
	}
	inLog.Close()
}

func (b *Broker) replayOut() {
	outLog, err := os.Open(OutLogFile)
	if err != nil {
		log.Fatalf("failed opening file: %s", err)
	}
	scanner := bufio.NewScanner(outLog)
	for scanner.Scan() {
		data := LogData{}
		json.Unmarshal([]byte(scanner.Text()), &data)
		b.Emit(
			data.Service,
			data.Action,
			[]byte(data.Data),
			false,
		)
	}
	if err := scanner.Err(); err != nil {
		log.Fatal(err)
	}
	outLog.Close()
}

func (b *Broker) Close() {
	if b.inLog != nil {
		b.inLog.Close()
	}
	if b.outLog != nil {
		b.outLog.Close()
	}
	if b.channel != nil {
		b.channel.Close()
	}
	if b.conn != nil {
		b.conn.Close()
	}
}
