package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/banklab/udpbank/internal/bank"
	"github.com/banklab/udpbank/internal/protocol"
)

func startTestServer(t *testing.T, opts ...Option) (*net.UDPConn, func()) {
	t.Helper()

	srvConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := New(srvConn, bank.NewInMemoryBank(), opts...)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cli, err := net.DialUDP("udp", nil, srvConn.LocalAddr().(*net.UDPAddr))
	if err != nil {
		cancel()
		t.Fatalf("dial: %v", err)
	}

	return cli, func() {
		cli.Close()
		cancel()
		<-done
		srvConn.Close()
	}
}

func roundTrip(t *testing.T, cli *net.UDPConn, req *protocol.Message) *protocol.Message {
	t.Helper()

	if _, err := cli.Write(req.Encode()); err != nil {
		t.Fatalf("write: %v", err)
	}

	buf := make([]byte, 4096)
	if err := cli.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set deadline: %v", err)
	}
	n, err := cli.Read(buf)
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}

	reply := &protocol.Message{}
	if err := reply.Decode(buf[:n]); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	return reply
}

func TestServer_OpenAndQueryBalance(t *testing.T) {
	cli, stop := startTestServer(t)
	defer stop()

	openReq, err := protocol.EncodeOpenRequest(1, 0, protocol.OpenRequest{
		Name: "alice", Password: "secret", Currency: protocol.CNY, Initial: 100,
	})
	if err != nil {
		t.Fatalf("encode open: %v", err)
	}

	reply := roundTrip(t, cli, openReq)
	if reply.Status() != protocol.StatusOK {
		t.Fatalf("open: status = %d, want OK", reply.Status())
	}
	opened, err := protocol.DecodeOpenReply(reply)
	if err != nil {
		t.Fatalf("decode open reply: %v", err)
	}
	if opened.Balance != 100 {
		t.Fatalf("opened balance = %v, want 100", opened.Balance)
	}

	queryReq, err := protocol.EncodeQueryBalanceRequest(2, 0, protocol.AccountRequest{
		Name: "alice", AccountNo: opened.AccountNo, Password: "secret",
	})
	if err != nil {
		t.Fatalf("encode query: %v", err)
	}
	reply = roundTrip(t, cli, queryReq)
	if reply.Status() != protocol.StatusOK {
		t.Fatalf("query: status = %d, want OK", reply.Status())
	}
	qb, err := protocol.DecodeQueryBalanceReply(reply)
	if err != nil {
		t.Fatalf("decode query reply: %v", err)
	}
	if qb.Balance != 100 {
		t.Fatalf("queried balance = %v, want 100", qb.Balance)
	}
}

func TestServer_AtMostOnce_ReplaysCachedReply(t *testing.T) {
	cli, stop := startTestServer(t)
	defer stop()

	openReq, err := protocol.EncodeOpenRequest(1, protocol.FlagAtMostOnce, protocol.OpenRequest{
		Name: "bob", Password: "hunter2", Currency: protocol.SGD, Initial: 50,
	})
	if err != nil {
		t.Fatalf("encode open: %v", err)
	}

	first := roundTrip(t, cli, openReq)
	opened, err := protocol.DecodeOpenReply(first)
	if err != nil {
		t.Fatalf("decode first reply: %v", err)
	}

	// Same requestID, same flag: the server must replay the cached reply
	// instead of opening a second account.
	second := roundTrip(t, cli, openReq)
	replayed, err := protocol.DecodeOpenReply(second)
	if err != nil {
		t.Fatalf("decode replayed reply: %v", err)
	}
	if replayed.AccountNo != opened.AccountNo {
		t.Fatalf("replay account = %d, want %d (original account, not a fresh open)", replayed.AccountNo, opened.AccountNo)
	}
}

func TestServer_AtLeastOnce_AlwaysReexecutes(t *testing.T) {
	cli, stop := startTestServer(t)
	defer stop()

	openReq, err := protocol.EncodeOpenRequest(1, 0, protocol.OpenRequest{
		Name: "carol", Password: "pw", Currency: protocol.CNY, Initial: 10,
	})
	if err != nil {
		t.Fatalf("encode open: %v", err)
	}

	firstReply := roundTrip(t, cli, openReq)
	first, err := protocol.DecodeOpenReply(firstReply)
	if err != nil {
		t.Fatalf("decode first: %v", err)
	}

	secondReply := roundTrip(t, cli, openReq)
	second, err := protocol.DecodeOpenReply(secondReply)
	if err != nil {
		t.Fatalf("decode second: %v", err)
	}

	if second.AccountNo == first.AccountNo {
		t.Fatalf("at-least-once retry reused account %d, want a second distinct account opened", first.AccountNo)
	}
}

func TestServer_BadMagic_DroppedSilently(t *testing.T) {
	cli, stop := startTestServer(t)
	defer stop()

	garbage := make([]byte, protocol.HeaderSize)
	if _, err := cli.Write(garbage); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := cli.SetReadDeadline(time.Now().Add(300 * time.Millisecond)); err != nil {
		t.Fatalf("set deadline: %v", err)
	}
	buf := make([]byte, 64)
	if _, err := cli.Read(buf); err == nil {
		t.Fatal("expected no reply for a malformed datagram")
	}
}

func TestServer_MonitorReceivesTransferCallbacksInOrder(t *testing.T) {
	cli, stop := startTestServer(t)
	defer stop()

	open := func(name, password string, initial float64) int32 {
		req, err := protocol.EncodeOpenRequest(uint64(len(name)+1), 0, protocol.OpenRequest{
			Name: name, Password: password, Currency: protocol.CNY, Initial: initial,
		})
		if err != nil {
			t.Fatalf("encode open: %v", err)
		}
		reply := roundTrip(t, cli, req)
		opened, err := protocol.DecodeOpenReply(reply)
		if err != nil {
			t.Fatalf("decode open: %v", err)
		}
		return opened.AccountNo
	}

	fromAcc := open("dave", "pw1", 200)
	toAcc := open("erin", "pw2", 0)

	monReq, err := protocol.EncodeMonitorRegisterRequest(99, 0, protocol.MonitorRegisterRequest{Seconds: 5})
	if err != nil {
		t.Fatalf("encode monitor: %v", err)
	}
	monReply := roundTrip(t, cli, monReq)
	if monReply.Status() != protocol.StatusOK {
		t.Fatalf("monitor register status = %d, want OK", monReply.Status())
	}

	transferReq, err := protocol.EncodeTransferRequest(100, 0, protocol.TransferRequest{
		Name: "dave", FromAcc: fromAcc, Password: "pw1", ToAcc: toAcc, Currency: protocol.CNY, Amount: 75,
	})
	if err != nil {
		t.Fatalf("encode transfer: %v", err)
	}
	transferReply := roundTrip(t, cli, transferReq)
	if transferReply.Status() != protocol.StatusOK {
		t.Fatalf("transfer status = %d, want OK", transferReply.Status())
	}

	// Two callbacks should follow the transfer reply: fromAcc then toAcc.
	var callbacks []*protocol.Message
	for i := 0; i < 2; i++ {
		buf := make([]byte, 4096)
		if err := cli.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
			t.Fatalf("set deadline: %v", err)
		}
		n, err := cli.Read(buf)
		if err != nil {
			t.Fatalf("read callback %d: %v", i, err)
		}
		cb := &protocol.Message{}
		if err := cb.Decode(buf[:n]); err != nil {
			t.Fatalf("decode callback %d: %v", i, err)
		}
		if cb.MsgType() != protocol.Callback {
			t.Fatalf("callback %d: msgType = %d, want Callback", i, cb.MsgType())
		}
		callbacks = append(callbacks, cb)
	}

	first, err := protocol.DecodeCallbackUpdate(callbacks[0])
	if err != nil {
		t.Fatalf("decode first callback: %v", err)
	}
	second, err := protocol.DecodeCallbackUpdate(callbacks[1])
	if err != nil {
		t.Fatalf("decode second callback: %v", err)
	}

	if first.AccountNo != fromAcc {
		t.Fatalf("first callback account = %d, want fromAcc %d", first.AccountNo, fromAcc)
	}
	if second.AccountNo != toAcc {
		t.Fatalf("second callback account = %d, want toAcc %d", second.AccountNo, toAcc)
	}
}
