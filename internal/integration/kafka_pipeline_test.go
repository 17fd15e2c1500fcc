//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/genbank-curate/internal/adapter/files"
	kafkaadapter "github.com/couchcryptid/genbank-curate/internal/adapter/kafka"
	"github.com/couchcryptid/genbank-curate/internal/adapter/ncbi"
	"github.com/couchcryptid/genbank-curate/internal/config"
	"github.com/couchcryptid/genbank-curate/internal/domain"
	"github.com/couchcryptid/genbank-curate/internal/observability"
	"github.com/couchcryptid/genbank-curate/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testTopic = "curated-records"

const ncbiCSV = `genbank_accession,database,strain,region,location,collected,submitted,length,host,isolation_source,biosample_accession,title,authors,publications,sequence
MT039888,GenBank,SARS-CoV-2/human/USA/MA1/2020,North America,USA: Massachusetts,2020-01-29,2020-02-07T00:00:00Z,4,Homo sapiens,,,title one,"Sheth,M.",,ACGT
MT039889,GenBank,,North America,USA: Massachusetts,2020-02,2020-02-07T00:00:00Z,2,Homo sapiens,,,title two,,,GG
MT039890,GenBank,,North America,,2020-02-01,,2,Homo sapiens,,,title three,,,CC
`

type stubGeocoder struct{}

func (stubGeocoder) Geocode(_ context.Context, address string) (domain.GeocodeResult, error) {
	if address != "Massachusetts, USA" {
		return domain.GeocodeResult{}, nil
	}
	return domain.GeocodeResult{
		Found: true,
		Lat:   42.4072107,
		Lon:   -71.3824374,
		Types: []string{"administrative_area_level_1", "political"},
		Components: []domain.AddressComponent{
			{LongName: "Massachusetts", ShortName: "MA", Types: []string{"administrative_area_level_1", "political"}},
			{LongName: "United States", ShortName: "US", Types: []string{"country", "political"}},
		},
	}, nil
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0", kafka.WithClusterID("genbank-curate-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

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

// TestCurationPublishesToKafka runs the pipeline over a saved NCBI response
// with the file sinks and the Kafka publisher, then reads the topic back.
func TestCurationPublishesToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaTopic:     testTopic,
		KafkaBatchSize: 10,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()

	src, err := ncbi.NewSource(io.NopCloser(strings.NewReader(ncbiCSV)))
	require.NoError(t, err)
	defer src.Close()

	state := domain.NewRunState()
	curator := domain.NewCurator(domain.NewResolver(stubGeocoder{}, state), domain.NewCanonicalizer(domain.FullNormalization()), state)

	w, err := files.Create(t.TempDir())
	require.NoError(t, err)
	publisher := kafkaadapter.NewWriter(cfg, metrics, logger)

	p := pipeline.New(src, curator, pipeline.MultiLoader{w, publisher}, w, state, logger, metrics, pipeline.Options{})
	sum, err := p.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, publisher.Close())

	assert.Equal(t, 3, sum.Read)
	assert.Equal(t, 2, sum.Emitted)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer consumer.Close()

	var strains []string
	for range sum.Emitted {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from topic")

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, domain.Virus, headers["virus"])
		_, err = time.Parse(time.RFC3339, headers["curated_at"])
		require.NoError(t, err)

		var rec domain.OutputRecord
		require.NoError(t, json.Unmarshal(msg.Value, &rec))
		assert.Equal(t, string(msg.Key), rec.Strain)
		assert.Equal(t, "USA", rec.Country)
		assert.Equal(t, "Massachusetts", rec.Division)
		strains = append(strains, rec.Strain)
	}

	assert.Equal(t, []string{"USA/MA1/2020", "USA/MT039889/2020"}, strains)
}
