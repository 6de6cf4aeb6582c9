package websocket

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/chatwave/chat_backend/models"
	"github.com/chatwave/chat_backend/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db          *gorm.DB
	registry    *Registry
	hub         *Hub
	coordinator *Coordinator
	rooms       *store.RoomStore
	messages    *store.MessageStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.RoomMember{},
		&models.Message{},
		&models.Reaction{},
		&models.ReadReceipt{},
	))

	registry := NewRegistry()
	hub := NewHub(registry)
	rooms := store.NewRoomStore(db)
	messages := store.NewMessageStore(db)

	return &testEnv{
		db:          db,
		registry:    registry,
		hub:         hub,
		coordinator: NewCoordinator(registry, hub, rooms, messages),
		rooms:       rooms,
		messages:    messages,
	}
}

func (env *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

// connect builds a client without a network connection; broadcasts land in
// its send buffer where tests can read them.
func (env *testEnv) connect(user *models.User) *Client {
	client := &Client{
		ID:          uuid.New(),
		hub:         env.hub,
		coordinator: env.coordinator,
		send:        make(chan []byte, 32),
		userID:      user.ID,
		username:    user.Username,
	}
	env.coordinator.Connect(client)
	return client
}

func nextEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case data := <-c.send:
		var event Event
		require.NoError(t, json.Unmarshal(data, &event))
		return event
	default:
		t.Fatal("expected a queued event")
		return Event{}
	}
}

func noEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("unexpected event: %s", data)
	default:
	}
}

func payload(t *testing.T, event Event) map[string]interface{} {
	t.Helper()
	m, ok := event.Payload.(map[string]interface{})
	require.True(t, ok, "payload is not an object: %v", event.Payload)
	return m
}

func TestJoinPublicRoomAutoAddsMembership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	room, err := env.rooms.Create("general", "hello", alice.ID, false, nil, nil)
	require.NoError(t, err)

	client := env.connect(bob)
	env.coordinator.Join(client, room.ID, "")

	event := nextEvent(t, client)
	assert.Equal(t, EventRoomJoined, event.Type)

	body := payload(t, event)
	roomBody := body["room"].(map[string]interface{})
	assert.Equal(t, "general", roomBody["name"])
	assert.Equal(t, "hello", roomBody["description"])
	assert.Len(t, roomBody["members"], 2)

	isMember, err := env.rooms.IsMember(room.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, isMember)

	session, _ := env.registry.Get(client.ID)
	assert.Equal(t, room.ID, session.RoomID)
}

func TestJoinTwiceNeverDuplicatesMembership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	room, err := env.rooms.Create("general", "", alice.ID, false, nil, nil)
	require.NoError(t, err)

	client := env.connect(bob)
	env.coordinator.Join(client, room.ID, "")
	nextEvent(t, client)
	env.coordinator.Join(client, room.ID, "")
	assert.Equal(t, EventRoomJoined, nextEvent(t, client).Type)

	reloaded, err := env.rooms.FindByID(room.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.MemberCount())
}

func TestJoinRoomNotFound(t *testing.T) {
	env := newTestEnv(t)
	bob := env.createUser(t, "bob")

	client := env.connect(bob)
	env.coordinator.Join(client, 9999, "")

	event := nextEvent(t, client)
	assert.Equal(t, EventError, event.Type)
	assert.Equal(t, "Room not found", payload(t, event)["message"])

	session, _ := env.registry.Get(client.ID)
	assert.Zero(t, session.RoomID)
}

func TestJoinPrivateRoomDenied(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	carol := env.createUser(t, "carol")

	room, err := env.rooms.Create("secret", "", alice.ID, true, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, room.AccessKey)

	tests := []struct {
		name string
		key  string
	}{
		{name: "no key", key: ""},
		{name: "wrong key", key: "WRONGKEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := env.connect(carol)
			env.coordinator.Join(client, room.ID, tt.key)

			event := nextEvent(t, client)
			assert.Equal(t, EventError, event.Type)

			// denial leaves zero membership change and no session room
			isMember, err := env.rooms.IsMember(room.ID, carol.ID)
			require.NoError(t, err)
			assert.False(t, isMember)

			session, _ := env.registry.Get(client.ID)
			assert.Zero(t, session.RoomID)
		})
	}
}

func TestJoinPrivateRoomWithValidKey(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	carol := env.createUser(t, "carol")

	room, err := env.rooms.Create("secret", "", alice.ID, true, nil, nil)
	require.NoError(t, err)

	client := env.connect(carol)
	env.coordinator.Join(client, room.ID, *room.AccessKey)

	assert.Equal(t, EventRoomJoined, nextEvent(t, client).Type)

	reloaded, err := env.rooms.FindByID(room.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.MemberCount())
}

func TestJoinPrivateRoomExpiredKey(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	carol := env.createUser(t, "carol")

	room, err := env.rooms.Create("secret", "", alice.ID, true, nil, nil)
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, env.db.Model(room).Update("key_expires_at", past).Error)

	client := env.connect(carol)
	env.coordinator.Join(client, room.ID, *room.AccessKey)

	event := nextEvent(t, client)
	assert.Equal(t, EventError, event.Type)

	isMember, err := env.rooms.IsMember(room.ID, carol.ID)
	require.NoError(t, err)
	assert.False(t, isMember)
}

func TestJoinRoomAtCapacity(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	room, err := env.rooms.Create("tiny", "", alice.ID, false, nil, nil)
	require.NoError(t, err)
	require.NoError(t, env.db.Model(room).Update("max_members", 1).Error)

	client := env.connect(bob)
	env.coordinator.Join(client, room.ID, "")

	event := nextEvent(t, client)
	assert.Equal(t, EventError, event.Type)

	reloaded, err := env.rooms.FindByID(room.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.MemberCount())
}

func TestJoinNotifiesExistingSessions(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	room, err := env.rooms.Create("general", "", alice.ID, false, nil, nil)
	require.NoError(t, err)

	aliceClient := env.connect(alice)
	env.coordinator.Join(aliceClient, room.ID, "")
	nextEvent(t, aliceClient) // room-joined

	bobClient := env.connect(bob)
	env.coordinator.Join(bobClient, room.ID, "")

	notice := nextEvent(t, aliceClient)
	assert.Equal(t, EventUserJoined, notice.Type)
	assert.Equal(t, "bob", payload(t, notice)["username"])

	// the joiner gets the snapshot, not its own join notice
	assert.Equal(t, EventRoomJoined, nextEvent(t, bobClient).Type)
	noEvent(t, bobClient)
}

func TestSendBroadcastsToWholeRoomIncludingSender(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")

	general, err := env.rooms.Create("general", "", alice.ID, false, nil, nil)
	require.NoError(t, err)
	elsewhere, err := env.rooms.Create("elsewhere", "", carol.ID, false, nil, nil)
	require.NoError(t, err)

	aliceClient := env.connect(alice)
	bobClient := env.connect(bob)
	carolClient := env.connect(carol)

	env.coordinator.Join(aliceClient, general.ID, "")
	env.coordinator.Join(bobClient, general.ID, "")
	env.coordinator.Join(carolClient, elsewhere.ID, "")

	// drain join traffic
	for _, c := range []*Client{aliceClient, bobClient, carolClient} {
		for len(c.send) > 0 {
			<-c.send
		}
	}

	before, err := env.rooms.FindByID(general.ID)
	require.NoError(t, err)

	env.coordinator.Send(aliceClient, "hi")

	for _, c := range []*Client{aliceClient, bobClient} {
		event := nextEvent(t, c)
		assert.Equal(t, EventNewMessage, event.Type)
		body := payload(t, event)
		assert.Equal(t, "hi", body["content"])
		assert.EqualValues(t, alice.ID, body["sender_id"])
	}

	// no leakage into other rooms
	noEvent(t, carolClient)

	// exactly one message stored, activity bumped
	_, total, err := env.messages.Page(general.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	after, err := env.rooms.FindByID(general.ID)
	require.NoError(t, err)
	assert.False(t, after.LastActivity.Before(before.LastActivity))
}

func TestSendRequiresRoom(t *testing.T) {
	env := newTestEnv(t)
	bob := env.createUser(t, "bob")

	client := env.connect(bob)
	env.coordinator.Send(client, "hello?")

	event := nextEvent(t, client)
	assert.Equal(t, EventError, event.Type)
	assert.Equal(t, store.ErrNotInRoom.Error(), payload(t, event)["message"])
}

func TestSendRejectsInvalidContent(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	room, err := env.rooms.Create("general", "", alice.ID, false, nil, nil)
	require.NoError(t, err)

	client := env.connect(alice)
	env.coordinator.Join(client, room.ID, "")
	nextEvent(t, client)

	env.coordinator.Send(client, "   \n  ")

	event := nextEvent(t, client)
	assert.Equal(t, EventError, event.Type)

	_, total, err := env.messages.Page(room.ID, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestTypingNotifiesOthersOnly(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	room, err := env.rooms.Create("general", "", alice.ID, false, nil, nil)
	require.NoError(t, err)

	aliceClient := env.connect(alice)
	bobClient := env.connect(bob)
	env.coordinator.Join(aliceClient, room.ID, "")
	env.coordinator.Join(bobClient, room.ID, "")
	for _, c := range []*Client{aliceClient, bobClient} {
		for len(c.send) > 0 {
			<-c.send
		}
	}

	env.coordinator.Typing(bobClient, true)

	notice := nextEvent(t, aliceClient)
	assert.Equal(t, EventUserTyping, notice.Type)
	body := payload(t, notice)
	assert.Equal(t, "bob", body["username"])
	assert.Equal(t, true, body["is_typing"])

	noEvent(t, bobClient)
}

func TestLeaveKeepsStoredMembership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	room, err := env.rooms.Create("general", "", alice.ID, false, nil, nil)
	require.NoError(t, err)

	aliceClient := env.connect(alice)
	bobClient := env.connect(bob)
	env.coordinator.Join(aliceClient, room.ID, "")
	env.coordinator.Join(bobClient, room.ID, "")
	for _, c := range []*Client{aliceClient, bobClient} {
		for len(c.send) > 0 {
			<-c.send
		}
	}

	env.coordinator.Leave(bobClient)

	notice := nextEvent(t, aliceClient)
	assert.Equal(t, EventUserLeft, notice.Type)
	assert.Equal(t, "bob", payload(t, notice)["username"])

	// leaving the socket session is not leaving the room's membership
	isMember, err := env.rooms.IsMember(room.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, isMember)

	session, _ := env.registry.Get(bobClient.ID)
	assert.Zero(t, session.RoomID)
}

func TestDisconnectNotifiesRemainingSessions(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	room, err := env.rooms.Create("general", "", alice.ID, false, nil, nil)
	require.NoError(t, err)

	aliceClient := env.connect(alice)
	bobClient := env.connect(bob)
	env.coordinator.Join(aliceClient, room.ID, "")
	env.coordinator.Join(bobClient, room.ID, "")
	for _, c := range []*Client{aliceClient, bobClient} {
		for len(c.send) > 0 {
			<-c.send
		}
	}

	env.coordinator.Disconnect(bobClient)

	notice := nextEvent(t, aliceClient)
	assert.Equal(t, EventUserLeft, notice.Type)

	_, ok := env.registry.Get(bobClient.ID)
	assert.False(t, ok)
}

func TestSwitchingRoomsNotifiesOldRoom(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	first, err := env.rooms.Create("first", "", alice.ID, false, nil, nil)
	require.NoError(t, err)
	second, err := env.rooms.Create("second", "", alice.ID, false, nil, nil)
	require.NoError(t, err)

	aliceClient := env.connect(alice)
	bobClient := env.connect(bob)
	env.coordinator.Join(aliceClient, first.ID, "")
	env.coordinator.Join(bobClient, first.ID, "")
	for _, c := range []*Client{aliceClient, bobClient} {
		for len(c.send) > 0 {
			<-c.send
		}
	}

	env.coordinator.Join(bobClient, second.ID, "")

	notice := nextEvent(t, aliceClient)
	assert.Equal(t, EventUserLeft, notice.Type)

	session, _ := env.registry.Get(bobClient.ID)
	assert.Equal(t, second.ID, session.RoomID)
}

func TestJoinSnapshotCarriesRecentMessages(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	room, err := env.rooms.Create("general", "", alice.ID, false, nil, nil)
	require.NoError(t, err)
	for i := 1; i <= 3; i++ {
		_, err := env.messages.Append(room.ID, alice.ID, fmt.Sprintf("message %d", i), models.MessageTypeText)
		require.NoError(t, err)
	}

	client := env.connect(bob)
	env.coordinator.Join(client, room.ID, "")

	event := nextEvent(t, client)
	require.Equal(t, EventRoomJoined, event.Type)

	messages, ok := payload(t, event)["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 3)
	firstMsg := messages[0].(map[string]interface{})
	assert.Equal(t, "message 1", firstMsg["content"])
}
