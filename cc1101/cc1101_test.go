package cc1101

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/hatstand/oregontx/mocks"

	. "github.com/smartystreets/goconvey/convey"
)

func WithMocks(t *testing.T, f func(bus *mocks.MockSPIBus, cc1101 *CC1101)) func() {
	return func() {
		mock := gomock.NewController(t)
		defer mock.Finish()
		bus := mocks.NewMockSPIBus(mock)
		cc1101 := NewCC1101(bus, nil)
		f(bus, cc1101)
	}
}

type pinErr struct {
	err error
}

func (p *pinErr) Err() error {
	return p.err
}

func TestSelfTest(t *testing.T) {
	Convey("Init", t, WithMocks(t, func(bus *mocks.MockSPIBus, cc1101 *CC1101) {
		bus.EXPECT().TransferAndReceiveData([]byte{VERSION | READ_SINGLE_BYTE, 0x00}).Return(nil).SetArg(0, []byte{0x00, 0x14})
		bus.EXPECT().TransferAndReceiveData([]byte{PARTNUM | READ_SINGLE_BYTE, 0x00}).Return(nil).SetArg(0, []byte{0x00, 0x00})

		So(cc1101.SelfTest(), ShouldBeNil)
	}))

	Convey("Wrong chip", t, WithMocks(t, func(bus *mocks.MockSPIBus, cc1101 *CC1101) {
		bus.EXPECT().TransferAndReceiveData([]byte{VERSION | READ_SINGLE_BYTE, 0x00}).Return(nil).SetArg(0, []byte{0x00, 0xff})
		bus.EXPECT().TransferAndReceiveData([]byte{PARTNUM | READ_SINGLE_BYTE, 0x00}).Return(nil).SetArg(0, []byte{0x00, 0x00})

		So(cc1101.SelfTest(), ShouldNotBeNil)
	}))
}

func TestStrobe(t *testing.T) {
	Convey("Strobe", t, WithMocks(t, func(bus *mocks.MockSPIBus, cc1101 *CC1101) {
		bus.EXPECT().TransferAndReceiveData([]byte{0x42, 0x00}).Return(nil).SetArg(0, []byte{0x43, 0x00})

		ret, err := cc1101.Strobe(0x42)
		So(err, ShouldBeNil)
		So(ret, ShouldEqual, 0x43)
	}))
}

func TestReset(t *testing.T) {
	Convey("Reset", t, WithMocks(t, func(bus *mocks.MockSPIBus, cc1101 *CC1101) {
		bus.EXPECT().TransferAndReceiveData([]byte{SRES, 0x00}).Return(nil)

		So(cc1101.Reset(), ShouldBeNil)
	}))
}

func TestSetState(t *testing.T) {
	Convey("TX", t, WithMocks(t, func(bus *mocks.MockSPIBus, cc1101 *CC1101) {
		bus.EXPECT().TransferAndReceiveData([]byte{STX, 0x00}).Return(nil)
		So(cc1101.SetTx(), ShouldBeNil)
	}))
	Convey("IDLE", t, WithMocks(t, func(bus *mocks.MockSPIBus, cc1101 *CC1101) {
		bus.EXPECT().TransferAndReceiveData([]byte{SIDLE, 0x00}).Return(nil)
		So(cc1101.SetIdle(), ShouldBeNil)
	}))
}

func TestInit(t *testing.T) {
	Convey("Configures OOK", t, WithMocks(t, func(bus *mocks.MockSPIBus, cc1101 *CC1101) {
		written := map[byte]byte{}
		bus.EXPECT().TransferAndReceiveData(gomock.Len(2)).Times(len(ookRegisters)).Do(func(data []byte) {
			written[data[0]] = data[1]
		})
		bus.EXPECT().TransferAndReceiveData([]byte{PATABLE | WRITE_BURST, 0x00, 0xc0}).Return(nil)

		So(cc1101.Init(), ShouldBeNil)
		So(written[PKTCTRL0], ShouldEqual, 0x32)
		So(written[MDMCFG2], ShouldEqual, 0x30)
		So([]byte{written[FREQ2], written[FREQ1], written[FREQ0]}, ShouldResemble, []byte{0x10, 0xb0, 0x71})
	}))

	Convey("Stops on bus errors", t, WithMocks(t, func(bus *mocks.MockSPIBus, cc1101 *CC1101) {
		bus.EXPECT().TransferAndReceiveData(gomock.Any()).Return(errors.New("spi"))
		So(cc1101.Init(), ShouldNotBeNil)
	}))
}

func TestTransmitter(t *testing.T) {
	Convey("Keys the radio around a send", t, WithMocks(t, func(bus *mocks.MockSPIBus, cc1101 *CC1101) {
		sender := mocks.NewMockTransmitter(gomock.NewController(t))
		gomock.InOrder(
			bus.EXPECT().TransferAndReceiveData([]byte{STX, 0x00}).Return(nil),
			sender.EXPECT().Send(byte(47), float32(23.7), true),
			bus.EXPECT().TransferAndReceiveData([]byte{SIDLE, 0x00}).Return(nil),
		)

		tx := &Transmitter{Radio: cc1101, Sender: sender}
		tx.Send(47, 23.7, true)
		So(tx.Err(), ShouldBeNil)
	}))

	Convey("Skips the send if TX fails", t, WithMocks(t, func(bus *mocks.MockSPIBus, cc1101 *CC1101) {
		sender := mocks.NewMockTransmitter(gomock.NewController(t))
		bus.EXPECT().TransferAndReceiveData([]byte{STX, 0x00}).Return(errors.New("spi"))

		tx := &Transmitter{Radio: cc1101, Sender: sender}
		tx.Send(47, 23.7, true)
		So(tx.Err(), ShouldNotBeNil)
	}))

	Convey("Combines pin errors", t, WithMocks(t, func(bus *mocks.MockSPIBus, cc1101 *CC1101) {
		tx := &Transmitter{Radio: cc1101, Pin: &pinErr{errors.New("gpio")}}
		So(tx.Err(), ShouldNotBeNil)
		So(tx.Err().Error(), ShouldContainSubstring, "gpio")
	}))
}
