package adapter

import (
	"strings"

	"github.com/Shopify/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// Tipos de transporte suportados pela fila de comandos.
const (
	TransportGoChannel = "gochannel"
	TransportRedis     = "redis"
	TransportKafka     = "kafka"
)

var ErrUnknownTransport = errors.New("unknown queue transport")

type TransportConfig struct {
	Kind          string
	RedisAddr     string
	KafkaBrokers  []string
	ConsumerGroup string
	Consumer      string
}

// Transport reúne publisher e subscriber de um mesmo broker.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	closers    []func() error
}

func (t *Transport) Close() error {
	var combined error
	for i := len(t.closers) - 1; i >= 0; i-- {
		if err := t.closers[i](); err != nil {
			combined = errors.CombineErrors(combined, err)
		}
	}
	return combined
}

func NewTransport(cfg TransportConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	switch strings.ToLower(cfg.Kind) {
	case "", TransportGoChannel:
		return newGoChannelTransport(logger), nil
	case TransportRedis:
		return newRedisTransport(cfg, logger)
	case TransportKafka:
		return newKafkaTransport(cfg, logger)
	default:
		return nil, errors.Wrapf(ErrUnknownTransport, "%q", cfg.Kind)
	}
}

func newGoChannelTransport(logger watermill.LoggerAdapter) *Transport {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger)
	return &Transport{
		Publisher:  pubSub,
		Subscriber: pubSub,
		closers:    []func() error{pubSub.Close},
	}
}

func newRedisTransport(cfg TransportConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   0,
	})
	t := &Transport{closers: []func() error{client.Close}}

	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: client,
	}, logger)
	if err != nil {
		_ = t.Close()
		return nil, errors.Wrap(err, "creating redis stream publisher")
	}
	t.Publisher = publisher
	t.closers = append(t.closers, publisher.Close)

	subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        client,
		ConsumerGroup: cfg.ConsumerGroup,
		Consumer:      cfg.Consumer,
	}, logger)
	if err != nil {
		_ = t.Close()
		return nil, errors.Wrap(err, "creating redis stream subscriber")
	}
	t.Subscriber = subscriber
	t.closers = append(t.closers, subscriber.Close)
	return t, nil
}

func newKafkaTransport(cfg TransportConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	marshaler := kafka.DefaultMarshaler{}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   cfg.KafkaBrokers,
		Marshaler: marshaler,
	}, logger)
	if err != nil {
		return nil, errors.Wrap(err, "creating kafka publisher")
	}
	t := &Transport{Publisher: publisher, closers: []func() error{publisher.Close}}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V1_0_0_0
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.ClientID = cfg.Consumer

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               cfg.KafkaBrokers,
		Unmarshaler:           marshaler,
		ConsumerGroup:         cfg.ConsumerGroup,
		OverwriteSaramaConfig: saramaConfig,
		InitializeTopicDetails: &sarama.TopicDetail{
			NumPartitions:     1,
			ReplicationFactor: 1,
		},
	}, logger)
	if err != nil {
		_ = t.Close()
		return nil, errors.Wrap(err, "creating kafka subscriber")
	}
	t.Subscriber = subscriber
	t.closers = append(t.closers, subscriber.Close)
	return t, nil
}
