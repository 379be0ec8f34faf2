package grid

// GenerateLayout 枚举矩形网格中的全部坐标
//
// 列为外层循环、行为内层循环，因此返回列表的下标与 CellIDFromCoord 计算的格子ID一致：
//
//	layout[i] == CoordFromCellID(i)
//
// 渲染层依赖这一顺序把实例下标当作格子ID使用。
// 返回的坐标数量恒为 dims.Row * dims.Column。
func GenerateLayout(dims Coord) ([]Coord, error) {
	if err := validateDimensions(dims); err != nil {
		return nil, err
	}

	layout := make([]Coord, 0, dims.Row*dims.Column)
	for column := 0; column < dims.Column; column++ {
		for row := 0; row < dims.Row; row++ {
			layout = append(layout, Coord{Column: column, Row: row})
		}
	}
	return layout, nil
}
