//go:build integration

package analytics_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"sitegate/internal/analytics"
	"sitegate/pkg/testutil/containers"
)

type KafkaPublisherSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.redpanda = containers.NewRedpandaContainer(s.T())
}

func (s *KafkaPublisherSuite) TestPublishRoundTrip() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const topic = "test.pageviews"

	publisher, err := analytics.NewKafka(ctx, s.redpanda.Brokers, analytics.WithTopic(topic))
	s.Require().NoError(err)

	view := analytics.NewPageView(map[string]string{
		"path":   "/index.html",
		"origin": "https://my-site.wal.app/index.html",
	})
	s.Require().NoError(publisher.Publish(ctx, view))
	s.Require().NoError(publisher.Close(ctx))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().NoError(fetches.Err())

	records := fetches.Records()
	s.Require().Len(records, 1)

	var got analytics.PageView
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal(analytics.EventName, got.Name)
	s.Equal("/index.html", got.Properties["path"])
	s.Len(got.Properties, 2)
}
