package evictingqueue

import "testing"

func TestSimpleAdd(t *testing.T) {
	queue := New[string](3)

	if size := queue.Len(); size != 0 {
		t.Errorf("The queue should have a length of 0, but instead had a length of %d,", size)
	}

	queue.Add("One")
	queue.Add("Two")
	queue.Add("Three")

	if size := queue.Len(); size != 3 {
		t.Errorf("The queue should have a length of 3, but instead had a length of %d,", size)
	}

	if val, _ := queue.Get(0); val != "One" {
		t.Errorf("The first expected element was not in the queue at the expected position.")
	}

	if val, _ := queue.Get(1); val != "Two" {
		t.Errorf("The second expected element was not in the queue at the expected position.")
	}

	if val, _ := queue.Get(2); val != "Three" {
		t.Errorf("The third expected element was not in the queue at the expected position.")
	}
}

func TestEvictingAdd(t *testing.T) {
	queue := New[string](3)

	queue.Add("One")
	queue.Add("Two")
	queue.Add("Three")
	queue.Add("Four")

	if size := queue.Len(); size != 3 {
		t.Errorf("The queue should have a length of 3, but instead had a length of %d,", size)
	}

	if val, _ := queue.Get(0); val != "Two" {
		t.Errorf("The first expected element was not in the queue at the expected position.")
	}

	if val, _ := queue.Get(1); val != "Three" {
		t.Errorf("The second expected element was not in the queue at the expected position.")
	}

	if val, _ := queue.Get(2); val != "Four" {
		t.Errorf("The third expected element was not in the queue at the expected position.")
	}
}

func TestGetOutOfRange(t *testing.T) {
	queue := New[int](2)

	queue.Add(7)

	if _, ok := queue.Get(1); ok {
		t.Errorf("Index 1 of a single-element queue should be out-of-range.")
	}

	if _, ok := queue.Get(-1); ok {
		t.Errorf("A negative index should be out-of-range.")
	}
}

func TestSetAndDrop(t *testing.T) {
	queue := New[int](3)

	queue.Add(1)
	queue.Add(2)
	queue.Add(3)

	if !queue.Set(2, 30) {
		t.Fatalf("Setting the newest element should have succeeded.")
	}

	if queue.Set(3, 40) {
		t.Errorf("Setting an out-of-range index should have failed.")
	}

	queue.Drop(2)

	if size := queue.Len(); size != 1 {
		t.Fatalf("The queue should have a length of 1 after dropping two, but had %d.", size)
	}

	if val, _ := queue.Get(0); val != 30 {
		t.Errorf("Expected the surviving element to be 30, but it was %d.", val)
	}

	queue.Drop(5)

	if size := queue.Len(); size != 0 {
		t.Errorf("Dropping more than the length should empty the queue, but %d remain.", size)
	}
}

func TestSliceIsACopy(t *testing.T) {
	queue := New[int](3)

	queue.Add(1)
	queue.Add(2)

	s := queue.Slice()
	s[0] = 100

	if val, _ := queue.Get(0); val != 1 {
		t.Errorf("Mutating the returned slice should not affect the queue, but element 0 is %d.", val)
	}

	queue.Clear()

	if queue.Len() != 0 || queue.Cap() != 3 {
		t.Errorf("Clear should empty the queue but keep its capacity (len %d, cap %d).", queue.Len(), queue.Cap())
	}
}
