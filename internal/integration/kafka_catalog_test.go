//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/cityinfo-etl/internal/adapter/catalogfile"
	"github.com/couchcryptid/cityinfo-etl/internal/adapter/kafka"
	"github.com/couchcryptid/cityinfo-etl/internal/adapter/weathercn"
	"github.com/couchcryptid/cityinfo-etl/internal/config"
	"github.com/couchcryptid/cityinfo-etl/internal/domain"
	"github.com/couchcryptid/cityinfo-etl/internal/observability"
	"github.com/couchcryptid/cityinfo-etl/internal/pipeline"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testTopic = "test-city-catalog"

// list3 serves a two-province slice of the weather.com.cn catalog.
var list3 = map[string]string{
	"/city.xml":     "01|北京,34|安徽",
	"/city01.xml":   "0101|北京",
	"/city0101.xml": "010100|北京,010200|海淀",
	"/city34.xml":   "3406|安庆",
	"/city3406.xml": "220607|望江",
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("cityinfo-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func newList3Server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := list3[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestCatalogRunEndToEnd walks a fake list3 server with the real HTTP client
// and writes the catalog to both a file and a Kafka topic.
func TestCatalogRunEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)
	source := newList3Server(t)

	cfg := &config.Config{
		KafkaBrokers: []string{broker},
		KafkaTopic:   testTopic,
	}
	logger := discardLogger()
	metrics := observability.NewMetricsForTesting()
	clock := clockwork.NewRealClock()

	fetcher := weathercn.NewClient(5*time.Second, 10*time.Millisecond, clock, metrics, logger)
	traversal := pipeline.NewTraversal(pipeline.TraversalConfig{
		BaseURL:    source.URL,
		MaxRetries: 1,
	}, fetcher, nil, clock, nil, metrics, logger)

	outPath := filepath.Join(t.TempDir(), "city.json")
	fileWriter := catalogfile.NewWriter(outPath, clock, logger)
	kafkaWriter := kafka.NewWriter(cfg, "run-1", logger)
	t.Cleanup(func() { _ = kafkaWriter.Close() })

	p := pipeline.New(traversal, []pipeline.CatalogLoader{fileWriter, kafkaWriter}, clock, logger, metrics)
	res, err := p.Run(ctx)
	require.NoError(t, err)

	want := domain.Catalog{
		{ID: "101010100", Name: "北京"},
		{ID: "101010200", Name: "海淀"},
		{ID: "101220607", Name: "望江"},
	}
	assert.Equal(t, want, res.Catalog)
	assert.Equal(t, 2, res.Provinces)
	assert.False(t, res.FallbackUsed)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var onDisk domain.Catalog
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, want, onDisk)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	var published domain.Catalog
	for len(published) < len(want) {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from catalog topic")

		var d domain.District
		require.NoError(t, json.Unmarshal(msg.Value, &d))
		assert.Equal(t, d.ID, string(msg.Key))

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, "run-1", headers["run_id"])
		published = append(published, d)
	}
	assert.ElementsMatch(t, want, published)
}
