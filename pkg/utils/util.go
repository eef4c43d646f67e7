package utils

// DereferenceSeed は、SDK に渡した int32 のシードを安全にデリファレンスして int64 で返します。
// ポインタがnilの場合は0を返します。
func DereferenceSeed(seed *int32) int64 {
	if seed == nil {
		return 0
	}
	return int64(*seed)
}

// SeedToPtrInt32 は *int64 を SDK 用の *int32 に変換します。
// int32 の範囲外の値は下位 32 ビットに切り詰められます。
func SeedToPtrInt32(seed *int64) *int32 {
	if seed == nil {
		return nil
	}
	v := int32(*seed)
	return &v
}

// OffsetSeed は出力ごとに異なるシードを割り当てるため seed+offset を返します。
// seed が nil の場合は nil のままです。
func OffsetSeed(seed *int64, offset int) *int64 {
	if seed == nil {
		return nil
	}
	v := *seed + int64(offset)
	return &v
}
