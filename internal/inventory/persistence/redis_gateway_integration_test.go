package persistence

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/abgdnv/stockroom/internal/inventory"
	ierrors "github.com/abgdnv/stockroom/internal/inventory/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// RedisGatewaySuite is a test suite for the Redis gateway.
type RedisGatewaySuite struct {
	suite.Suite
	container testcontainers.Container
	client    *redis.Client
	ctx       context.Context
}

func (s *RedisGatewaySuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.container, err = testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(s.T(), err, "Failed to run Redis container")

	endpoint, err := s.container.Endpoint(s.ctx, "")
	require.NoError(s.T(), err, "Failed to get Redis endpoint")

	s.client = redis.NewClient(&redis.Options{Addr: endpoint})
	require.NoError(s.T(), s.client.Ping(s.ctx).Err(), "Failed to ping Redis")
}

func (s *RedisGatewaySuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *RedisGatewaySuite) SetupTest() {
	require.NoError(s.T(), s.client.FlushDB(s.ctx).Err())
}

func TestRedisGatewayIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(RedisGatewaySuite))
}

func (s *RedisGatewaySuite) TestLoad_MissingKey() {
	gw := NewRedisGateway(s.client, "stockroom:test", JSONCodec{})

	items, err := gw.Load(s.ctx)

	require.NoError(s.T(), err)
	assert.Empty(s.T(), items)
}

func (s *RedisGatewaySuite) TestRoundTrip() {
	for codecName, codec := range codecs() {
		for seqName, items := range sampleSequences() {
			s.Run(codecName+"/"+seqName, func() {
				gw := NewRedisGateway(s.client, "stockroom:"+codecName, codec)
				require.NoError(s.T(), gw.Save(s.ctx, items))

				loaded, err := gw.Load(s.ctx)

				require.NoError(s.T(), err)
				assert.Equal(s.T(), items, loaded)
			})
		}
	}
}

func (s *RedisGatewaySuite) TestLoad_Corrupt() {
	require.NoError(s.T(), s.client.Set(s.ctx, "stockroom:bad", "garbage", 0).Err())
	gw := NewRedisGateway(s.client, "stockroom:bad", JSONCodec{})

	_, err := gw.Load(s.ctx)

	assert.ErrorIs(s.T(), err, ierrors.ErrFormatMismatch)
}

func (s *RedisGatewaySuite) TestSave_Overwrites() {
	gw := NewRedisGateway(s.client, "stockroom:overwrite", BinaryCodec{})
	second := []inventory.Item{inventory.NewItem("C", "Cherry", 3, 3)}

	require.NoError(s.T(), gw.Save(s.ctx, []inventory.Item{inventory.NewItem("A", "Apple", 1, 1)}))
	require.NoError(s.T(), gw.Save(s.ctx, second))

	loaded, err := gw.Load(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), second, loaded)
}
