package ws

import (
	"context"
	"testing"
	"time"

	model "github.com/okian/spindle/internal/domain/model"
	"github.com/okian/spindle/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// testClient builds a hub-owned client with a chosen send buffer,
// without a live connection behind it.
func testClient(h *Hub, buffer int) *Client {
	return &Client{hub: h, send: make(chan Message, buffer)}
}

func receive(c *Client) (Message, bool) {
	select {
	case msg, ok := <-c.send:
		return msg, ok
	case <-time.After(2 * time.Second):
		return Message{}, false
	}
}

func waitForCount(h *Hub, want int) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.ClientCount() == want {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return h.ClientCount() == want
}

func TestHubBroadcast(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}

	Convey("Given a running hub with two subscribers", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		h := NewHub()
		go h.Run(ctx)

		a := testClient(h, 4)
		b := testClient(h, 4)
		h.register <- a
		h.register <- b
		So(waitForCount(h, 2), ShouldBeTrue)

		Convey("When broadcasting a new spin", func() {
			spin := model.Spin{ID: "spin_t1", Number: 7, Color: model.ColorRed, Timestamp: "t1"}
			h.BroadcastNewSpin(spin)

			Convey("Then both subscribers receive it", func() {
				for _, c := range []*Client{a, b} {
					msg, ok := receive(c)
					So(ok, ShouldBeTrue)
					So(msg.Type, ShouldEqual, MessageTypeNewSpin)
					So(msg.Timestamp, ShouldNotBeEmpty)

					got, isSpin := msg.Data.(model.Spin)
					So(isSpin, ShouldBeTrue)
					So(got.ID, ShouldEqual, "spin_t1")
				}
			})
		})

		Convey("When one subscriber cannot keep up", func() {
			slow := testClient(h, 0)
			h.register <- slow
			So(waitForCount(h, 3), ShouldBeTrue)

			h.Broadcast(MessageTypeNewSpin, nil)

			Convey("Then only the slow subscriber is dropped", func() {
				So(waitForCount(h, 2), ShouldBeTrue)

				_, ok := receive(a)
				So(ok, ShouldBeTrue)
				_, ok = receive(b)
				So(ok, ShouldBeTrue)

				_, open := <-slow.send
				So(open, ShouldBeFalse)
			})
		})

		Convey("When a subscriber unregisters", func() {
			h.unregister <- a
			So(waitForCount(h, 1), ShouldBeTrue)

			Convey("Then its send channel is closed", func() {
				_, open := <-a.send
				So(open, ShouldBeFalse)
			})
		})

		Convey("When the hub shuts down", func() {
			cancel()

			Convey("Then every subscriber channel closes", func() {
				So(waitForCount(h, 0), ShouldBeTrue)
				_, openA := receive(a)
				So(openA, ShouldBeFalse)
				_, openB := receive(b)
				So(openB, ShouldBeFalse)
			})
		})
	})
}

func TestEnrollAfterHubStops(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}

	Convey("Given a hub whose run loop has exited", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		h := NewHub()
		go h.Run(ctx)
		cancel()

		select {
		case <-h.done:
		case <-time.After(2 * time.Second):
			t.Fatal("hub did not stop")
		}

		Convey("When a late subscriber tries to enroll", func() {
			handler := NewHandler(h, nil)
			ok := handler.enroll(testClient(h, 4))

			Convey("Then the registration is refused instead of blocking", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestNewMessage(t *testing.T) {
	Convey("Given a freshly stamped message", t, func() {
		msg := NewMessage(MessageTypeConnected, nil)

		Convey("Then the delivery timestamp parses as RFC3339", func() {
			So(msg.Type, ShouldEqual, MessageTypeConnected)
			_, err := time.Parse(time.RFC3339, msg.Timestamp)
			So(err, ShouldBeNil)
		})
	})
}
