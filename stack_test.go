package vtex

import (
	"errors"
	"testing"
)

func TestCreateStackValid(t *testing.T) {
	dev := newMockDevice()
	st, err := CreateStack(dev, "terrain", validParams(), WithGroup("world"))
	if err != nil {
		t.Fatalf("CreateStack() = %v", err)
	}
	if !st.IsValid() {
		t.Error("IsValid() = false immediately after create, want true")
	}
	if !st.Handle().Valid() {
		t.Error("Handle() is invalid after successful create")
	}
	if st.Name() != "terrain" || st.Group() != "world" {
		t.Errorf("Name/Group = %q/%q, want terrain/world", st.Name(), st.Group())
	}
	if st.LayerCount() != 1 {
		t.Errorf("LayerCount() = %d, want 1", st.LayerCount())
	}
	if dev.createCalls != 1 {
		t.Errorf("createCalls = %d, want 1", dev.createCalls)
	}
}

func TestCreateStackNilDevice(t *testing.T) {
	if _, err := CreateStack(nil, "x", validParams()); !errors.Is(err, ErrNilDevice) {
		t.Errorf("CreateStack(nil device) = %v, want ErrNilDevice", err)
	}
}

func TestCreateStackNativeFailure(t *testing.T) {
	dev := newMockDevice()
	nativeErr := errors.New("out of GPU memory")
	dev.createFunc = func(*StackDesc) (StackHandle, error) {
		return InvalidStack, nativeErr
	}

	st, err := CreateStack(dev, "doomed", validParams())
	if !errors.Is(err, nativeErr) {
		t.Errorf("CreateStack() = %v, want wrapped native error", err)
	}
	if st != nil {
		t.Error("CreateStack() returned a stack on native failure")
	}
}

func TestStackDisposeIdempotent(t *testing.T) {
	dev := newMockDevice()
	st := newTestStack(t, dev)

	st.Dispose()
	st.Dispose()
	st.Dispose()

	if dev.destroyCalls != 1 {
		t.Errorf("destroyCalls = %d, want exactly 1", dev.destroyCalls)
	}
	if st.IsValid() {
		t.Error("IsValid() = true after Dispose, want false")
	}
	if st.Handle() != InvalidStack {
		t.Errorf("Handle() = %#x after Dispose, want InvalidStack", uint64(st.Handle()))
	}
}

func TestStackOperationsOnInvalidStack(t *testing.T) {
	dev := newMockDevice()
	binder := &mockBinder{}
	st, err := CreateStack(dev, "x", validParams(), WithBinder(binder))
	if err != nil {
		t.Fatal(err)
	}
	st.Dispose()

	if _, err := st.ActiveRequests(); !errors.Is(err, ErrInvalidStack) {
		t.Errorf("ActiveRequests() = %v, want ErrInvalidStack", err)
	}
	if err := st.RequestRegion(Rect{Width: 1, Height: 1}, 0, 1); !errors.Is(err, ErrInvalidStack) {
		t.Errorf("RequestRegion() = %v, want ErrInvalidStack", err)
	}
	if err := st.InvalidateRegion(Rect{Width: 1, Height: 1}, 0, 1); !errors.Is(err, ErrInvalidStack) {
		t.Errorf("InvalidateRegion() = %v, want ErrInvalidStack", err)
	}
	if err := st.BindToMaterial("material"); !errors.Is(err, ErrInvalidStack) {
		t.Errorf("BindToMaterial() = %v, want ErrInvalidStack", err)
	}
	if err := st.BindGlobally(); !errors.Is(err, ErrInvalidStack) {
		t.Errorf("BindGlobally() = %v, want ErrInvalidStack", err)
	}
	if binder.bindCalls != 0 || binder.globalCalls != 0 {
		t.Error("binder was called for an invalid stack")
	}
}

func TestStackBinding(t *testing.T) {
	dev := newMockDevice()
	binder := &mockBinder{}
	st, err := CreateStack(dev, "albedo", validParams(), WithBinder(binder))
	if err != nil {
		t.Fatal(err)
	}

	material := struct{ name string }{"rock"}
	if err := st.BindToMaterial(&material); err != nil {
		t.Fatalf("BindToMaterial() = %v", err)
	}
	if binder.lastName != "albedo" || binder.lastHandle != st.Handle() {
		t.Errorf("bind forwarded name=%q handle=%#x, want albedo/%#x",
			binder.lastName, uint64(binder.lastHandle), uint64(st.Handle()))
	}
	if binder.lastTarget != &material {
		t.Error("bind did not forward the target")
	}

	if err := st.BindToMaterialPropertyBlock(&material); err != nil {
		t.Fatalf("BindToMaterialPropertyBlock() = %v", err)
	}
	if err := st.BindGlobally(); err != nil {
		t.Fatalf("BindGlobally() = %v", err)
	}
	if binder.globalCalls != 1 {
		t.Errorf("globalCalls = %d, want 1", binder.globalCalls)
	}
}

func TestStackBindNilTarget(t *testing.T) {
	dev := newMockDevice()
	binder := &mockBinder{}
	st, err := CreateStack(dev, "x", validParams(), WithBinder(binder))
	if err != nil {
		t.Fatal(err)
	}

	if err := st.BindToMaterial(nil); !errors.Is(err, ErrNilTarget) {
		t.Errorf("BindToMaterial(nil) = %v, want ErrNilTarget", err)
	}
	if err := st.BindToMaterialPropertyBlock(nil); !errors.Is(err, ErrNilTarget) {
		t.Errorf("BindToMaterialPropertyBlock(nil) = %v, want ErrNilTarget", err)
	}
	if binder.bindCalls != 0 {
		t.Error("binder was called with a nil target")
	}
}

func TestStackBindWithoutBinder(t *testing.T) {
	dev := newMockDevice()
	st := newTestStack(t, dev)

	if err := st.BindToMaterial("m"); !errors.Is(err, ErrNilBinder) {
		t.Errorf("BindToMaterial() without binder = %v, want ErrNilBinder", err)
	}
	if err := st.BindGlobally(); !errors.Is(err, ErrNilBinder) {
		t.Errorf("BindGlobally() without binder = %v, want ErrNilBinder", err)
	}
}

func TestStackRegionSentinelForwardedLiterally(t *testing.T) {
	dev := newMockDevice()
	st := newTestStack(t, dev)

	region := Rect{X: 64, Y: 64, Width: 512, Height: 512}
	if err := st.RequestRegion(region, 2, AllMips); err != nil {
		t.Fatalf("RequestRegion() = %v", err)
	}
	if dev.lastNumMips != AllMips {
		t.Errorf("forwarded numMips = %#x, want the literal AllMips sentinel %#x",
			dev.lastNumMips, uint32(AllMips))
	}
	if dev.lastRegion != region || dev.lastMip != 2 {
		t.Errorf("forwarded region/mip = %+v/%d, want %+v/2", dev.lastRegion, dev.lastMip, region)
	}

	if err := st.InvalidateRegion(region, 0, AllMips); err != nil {
		t.Fatalf("InvalidateRegion() = %v", err)
	}
	if dev.lastNumMips != AllMips {
		t.Errorf("invalidate forwarded numMips = %#x, want literal sentinel", dev.lastNumMips)
	}
}

func TestStackSlotReuseSafetyAcrossFrames(t *testing.T) {
	dev := newMockDevice()
	st := newTestStack(t, dev)
	dev.seed(st.Handle(), 2)

	reqs, err := st.ActiveRequests()
	if err != nil {
		t.Fatal(err)
	}
	first := make(map[int32]bool)
	for i := 0; i < reqs.Len(); i++ {
		req, _ := reqs.At(i)
		first[req.ID] = true
	}

	// New requests arrive while the first snapshot is unfinished; their
	// ids must not collide with outstanding ones.
	dev.seed(st.Handle(), 2)
	reqs, err = st.ActiveRequests()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < reqs.Len(); i++ {
		req, _ := reqs.At(i)
		if first[req.ID] {
			t.Errorf("id %d appeared in two concurrent Processing snapshots", req.ID)
		}
		if err := reqs.UpdateStatus(req, StatusComplete); err != nil {
			t.Fatal(err)
		}
	}
	if err := reqs.Apply(); err != nil {
		t.Fatal(err)
	}
}
